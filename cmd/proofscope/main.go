package main

import (
	"github.com/DrSkyle/proofscope/cmd/proofscope/commands"
)

func main() {
	commands.Execute()
}
