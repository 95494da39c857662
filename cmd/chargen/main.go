package main

import (
	"chargen/cmd/chargen/cmd"
)

func main() {
	cmd.Execute()
}
