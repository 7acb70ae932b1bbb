package main

import "crashsig/internal/cli"

func main() {
	cli.Execute()
}
