// Package main is the entry point for the reelmark application.
package main

import (
	"github.com/reelmark-cli/reelmark/cmd"
	"github.com/reelmark-cli/reelmark/config"
	"github.com/reelmark-cli/reelmark/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
