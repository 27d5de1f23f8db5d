package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vmunix/anistrm/internal/config"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config file (default: discovered)")
	syncOnStart := flag.Bool("sync", false, "Run both sync tasks once at startup")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("anistrmd %s\n", version)
		os.Exit(0)
	}

	path := *configPath
	if path == "" {
		p, err := config.Discover()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		path = p
	}

	if err := runServer(path, *syncOnStart); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
