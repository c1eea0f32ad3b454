package main

import "github.com/jason-s-yu/holdem/internal/cli"

func main() {
	cli.Execute()
}
