package main

import "github.com/mcoot/roomlobby/internal/cli"

func main() {
	cli.Execute()
}
