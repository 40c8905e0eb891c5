package main

import "sniff/internal/cli"

func main() {
	cli.Execute()
}
