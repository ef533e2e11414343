package main

import "github.com/rail-service/bridge_sdk/internal/cli"

func main() {
	cli.Execute()
}
