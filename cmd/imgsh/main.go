package main

import (
	"github.com/robotalks/imglink/pkg/cli/sh"
	"github.com/robotalks/imglink/pkg/link"
	"github.com/robotalks/imglink/pkg/report"
)

//go-build: CGO_ENABLED=0

func init() {
	link.SetupFlags()
	report.SetupFlags()
}

func main() {
	sh.Main()
}
