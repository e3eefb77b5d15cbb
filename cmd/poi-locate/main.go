package main

/*
> ./bin/poi-locate -spatial-database-uri 'sqlite://?dsn=modernc://mem' -index-spatial-database -iterator-uri repo:// -iterator-source /usr/local/data/whosonfirst-data-admin-fr -target-bucket-uri file:///usr/local/data/allspots/located/ -report-uri locate.csv /usr/local/data/allspots/pois_hybrid.json
*/

import (
	"context"
	"log"

	_ "github.com/aaronland/go-sqlite-modernc"
	_ "github.com/whosonfirst/go-whosonfirst-iterate-git/v2"
	_ "github.com/whosonfirst/go-whosonfirst-spatial-pmtiles"
	_ "github.com/whosonfirst/go-whosonfirst-spatial-sqlite"
	_ "gocloud.dev/blob/fileblob"

	"github.com/allspots/go-poi-import/app/locate"
)

func main() {

	ctx := context.Background()

	err := locate.Run(ctx)

	if err != nil {
		log.Fatalf("Failed to run application, %v", err)
	}
}
