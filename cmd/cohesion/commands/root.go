package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cohesion",
	Short: "NFL lineup cohesion - system state 기반 라인업 응집도 서비스",
	Long: `Cohesion Unified CLI

Play-by-play 참여 데이터를 코칭 system state 단위로 집계하고
11인 라인업의 응집도(LSU, LIU, LIC)를 계산합니다.

Pipeline:
  ingest → states compute → aggregate run → score / serve

Usage:
  go run ./cmd/cohesion [command]

Examples:
  go run ./cmd/cohesion migrate up
  go run ./cmd/cohesion ingest feed --season 2023
  go run ./cmd/cohesion pipeline run
  go run ./cmd/cohesion serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
