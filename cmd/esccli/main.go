package main

import (
	"github.com/robotalks/esc.go/pkg/cli/sh"
	"github.com/robotalks/esc.go/pkg/config"

	_ "github.com/robotalks/esc.go/pkg/cli/cmds/esc"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags(nil)
}

func main() {
	sh.Main()
}
