package main

import "bananaledger/internal/cli"

func main() {
	cli.Execute()
}
