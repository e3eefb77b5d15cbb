package main

import (
	"context"
	"log"

	"github.com/allspots/go-poi-import/app/split"
	_ "gocloud.dev/blob/fileblob"
)

func main() {

	ctx := context.Background()

	err := split.Run(ctx)

	if err != nil {
		log.Fatalf("Failed to run application, %v", err)
	}
}
