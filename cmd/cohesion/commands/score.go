package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/cohesion/internal/cohesion"
	"github.com/wonny/cohesion/internal/contracts"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "라인업 응집도 계산",
	Long: `11인 라인업의 LSU / LIU / LIC / cohesion 을 계산합니다.

Example:
  go run ./cmd/cohesion score --team KC --side offense \
    --state 3f1c... --lineup 00-0033873,00-0036212,...`,
	RunE: runScore,
}

var (
	scoreTeam   string
	scoreSide   string
	scoreState  string
	scoreLineup []string
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreTeam, "team", "", "팀 약어")
	scoreCmd.Flags().StringVar(&scoreSide, "side", "", "offense | defense")
	scoreCmd.Flags().StringVar(&scoreState, "state", "", "system state id")
	scoreCmd.Flags().StringSliceVar(&scoreLineup, "lineup", nil, "gsis id 11개 (콤마 구분)")
	_ = scoreCmd.MarkFlagRequired("team")
	_ = scoreCmd.MarkFlagRequired("side")
	_ = scoreCmd.MarkFlagRequired("state")
	_ = scoreCmd.MarkFlagRequired("lineup")
}

func runScore(cmd *cobra.Command, args []string) error {
	side, err := contracts.ParseSide(scoreSide)
	if err != nil {
		return err
	}

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	scorer := cohesion.NewScorer(cohesion.NewRepository(d.db.Pool), d.log.Component("cohesion"))
	score, err := scorer.Score(cmd.Context(), contracts.LineupRequest{
		Team:          scoreTeam,
		Side:          side,
		SystemStateID: scoreState,
		Lineup:        scoreLineup,
	})
	if err != nil {
		return fmt.Errorf("score lineup: %w", err)
	}

	return PrintJSON(score)
}
