package main

import "github.com/vsinha/kitchenplan/pkg/interfaces/cli"

func main() {
	cli.Execute()
}
