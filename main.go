package main

import "github.com/skylerx/mystats/cmd"

func main() {
	cmd.Execute()
}
