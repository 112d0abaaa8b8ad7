package main

import (
	"github.com/robotalks/bldc.go/pkg/cli/sh"

	_ "github.com/robotalks/bldc.go/pkg/cli/cmds/bldc"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
