package main

import "github.com/rghosal/handlight/cmd/handlight/cmd"

func main() {
	cmd.Execute()
}
