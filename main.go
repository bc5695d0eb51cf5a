package main

import "github.com/papapumpkin/planit/cmd"

func main() {
	cmd.Execute()
}
