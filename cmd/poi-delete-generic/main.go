package main

import (
	"context"
	"log"

	_ "gocloud.dev/blob/fileblob"

	"github.com/allspots/go-poi-import/app/deletegeneric"
)

func main() {

	ctx := context.Background()

	err := deletegeneric.Run(ctx)

	if err != nil {
		log.Fatalf("Failed to run application, %v", err)
	}
}
