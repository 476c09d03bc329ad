package main

import (
	"os"

	"github.com/wonny/cohesion/cmd/cohesion/commands"
)

// main is the entry point for the cohesion CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/cohesion [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
