package main

import "github.com/killallgit/sanbao/cmd"

func main() {
	cmd.Execute()
}
