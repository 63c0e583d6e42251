package main

import "github.com/ritchiero/Budget-Agent/cli/internal/commands"

func main() {
	commands.Execute()
}
