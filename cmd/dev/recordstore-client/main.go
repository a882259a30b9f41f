package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/garnizeh/jobboard/pkg/recordstore"
)

// Dumps one collection of a running record store as indented JSON.
func main() {
	base := flag.String("base", "http://localhost:8090/api/v1", "record store base URL")
	collection := flag.String("collection", recordstore.Jobs, "collection to list")
	id := flag.String("id", "", "fetch a single record instead of listing")
	flag.Parse()

	client, err := recordstore.NewDefaultClient(recordstore.Config{BaseURL: *base, Timeout: 10 * time.Second})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	ctx := context.Background()
	var out any
	if *id != "" {
		err = client.Get(ctx, *collection, *id, &out)
	} else {
		err = client.List(ctx, *collection, &out)
	}
	if err != nil {
		log.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
}
