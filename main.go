// Package main provides the entry point for the vector editor.
package main

import (
	"log"
	"os"

	"vector-editor/internal/cli"
	"vector-editor/internal/version"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s", version.String())

	if err := cli.Run(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
