package main

import "breachwatch-cli/cmd"

func main() {
	cmd.Execute()
}
