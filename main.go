package main

import "results-ingest/cmd"

func main() {
	cmd.Execute()
}
