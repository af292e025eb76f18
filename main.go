// Package main is the entry point for the storyplay application.
package main

import (
	"github.com/samber/lo"
	"github.com/storyplay/storyplay/cmd"
	"github.com/storyplay/storyplay/config"
	"github.com/storyplay/storyplay/internal/cache"
	"github.com/storyplay/storyplay/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cache.CollectGarbage()

	cmd.Execute()
}
