package main

import (
	"os"

	"github.com/weiruankeji2025/claude-usage-monitor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
