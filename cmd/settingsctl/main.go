package main

import "github.com/confdock/settings/internal/cli"

func main() {
	cli.Execute()
}
