// Package main is the entry point for the teddycloud CLI.
//
// Usage:
//
//	teddycloud [flags] <command> [subcommand] [args]
//
// Commands:
//
//	config     - Configuration management (contexts, core.yaml)
//	convert    - Transcode audio sources into a non-live TAF file
//	stream     - Transcode a live-cycling source into a live TAF file
//	serve      - Serve a content directory over HTTP
//	inspect    - Dump a TAF file's header and verify its integrity
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/toniebox-reverse-engineering/teddy-cloud/cmd/teddycloud/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
