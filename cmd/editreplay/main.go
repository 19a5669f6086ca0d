// Command editreplay replays a recorded editing session headlessly and
// prints the features it produced as GeoJSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

func main() {
	scriptPath := flag.String("script", "", "Path to YAML session script")
	verbose := flag.Bool("v", false, "Print status messages to stderr")
	flag.Parse()

	if *scriptPath == "" {
		fmt.Println("Usage: editreplay -script <session.yaml> [-v]")
		os.Exit(1)
	}

	data, err := os.ReadFile(*scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read script: %v\n", err)
		os.Exit(1)
	}
	script, err := ParseScript(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	res, err := Replay(script)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Replay failed: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		for _, s := range res.Statuses {
			fmt.Fprintf(os.Stderr, "status: %s\n", s)
		}
	}
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Features); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write GeoJSON: %v\n", err)
		os.Exit(1)
	}
	if len(res.Errors) > 0 {
		os.Exit(2)
	}
}
