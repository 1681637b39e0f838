package main

import "github.com/papapumpkin/fxwatch/cmd"

func main() {
	cmd.Execute()
}
