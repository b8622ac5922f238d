// presetfetch downloads a preset pack (a directory of combatserver YAML
// configs) from any go-getter source: git, http, s3, local paths.
//
//	presetfetch -url git::https://example.com/packs.git//competitive -o ./presets
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	get "github.com/hashicorp/go-getter"

	"github.com/udisondev/voxelpvp/internal/config"
)

func main() {
	var (
		url = flag.String("url", "", "go-getter source of the preset pack")
		out = flag.String("o", "./presets", "output dir path")
	)
	flag.Parse()

	if *url == "" {
		fmt.Fprintln(os.Stderr, "preset pack url required")
		os.Exit(2)
	}

	if err := os.RemoveAll(*out); err != nil {
		log.Fatal(err)
	}

	log.Printf("downloading preset pack %s", *url)
	if err := get.Get(*out, *url); err != nil {
		log.Fatal(err)
	}

	// Validate every fetched YAML so a broken pack fails here, not at
	// server startup.
	entries, err := os.ReadDir(*out)
	if err != nil {
		log.Fatal(err)
	}
	valid := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := *out + "/" + entry.Name()
		if _, err := config.LoadGame(path); err != nil {
			log.Fatalf("invalid preset %s: %v", entry.Name(), err)
		}
		valid++
	}

	log.Printf("done: %d presets fetched to %s", valid, *out)
}
