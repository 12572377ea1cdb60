package main

import "github.com/papapumpkin/parallax/cmd"

func main() {
	cmd.Execute()
}
