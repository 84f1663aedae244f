package main

import "repos-cli/cmd"

func main() {
	cmd.Execute()
}
