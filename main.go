// main is the entry point for the kpiboard CLI.
package main

import (
	"github.com/huangsam/kpiboard/cmd"
	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/internal/iocache"
)

func main() {
	defer iocache.CloseStores()

	cmd.SetCacheManager(iocache.Manager)
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Error starting CLI", err)
	}

	if err := cmd.StopProfiling(); err != nil {
		contract.LogWarn("Error stopping profiling", err)
	}
}
