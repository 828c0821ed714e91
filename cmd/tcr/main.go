package main

import (
	"github.com/curatenet/tcr/cmd/tcr/cmd"
)

func main() {
	cmd.Execute()
}
