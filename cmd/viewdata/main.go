package main

import "github.com/goliatone/go-viewdata/cmd/viewdata/cmd"

func main() {
	cmd.Execute()
}
