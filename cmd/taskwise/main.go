package main

import "github.com/felixgeelhaar/taskwise/adapter/cli"

func main() {
	cli.Execute()
}
