package main

import "github.com/pfrederiksen/sz-deals/internal/cli"

func main() {
	cli.Execute()
}
