package main

import "github.com/pfrederiksen/f1-events/internal/cli"

func main() {
	cli.Execute()
}
