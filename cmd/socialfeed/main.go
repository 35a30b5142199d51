package main

import "github.com/d60-Lab/social-feed/cmd/socialfeed/commands"

func main() {
	commands.Execute()
}
