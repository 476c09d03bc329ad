package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/cohesion/internal/ingest"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "소스 피드 적재",
	Long: `Play-by-play, participation, player, coach 피드를 적재합니다.

Source (--source):
  local  - FEEDS_DIR 디렉토리
  http   - FEEDS_BASE_URL
  s3     - FEEDS_S3_BUCKET
  gcs    - FEEDS_GCS_BUCKET
  (생략 시 설정된 원격 소스 우선, 없으면 local)

.gz / .zst 파일은 자동으로 압축 해제됩니다.

Example:
  go run ./cmd/cohesion ingest feed --season 2022 --season 2023
  go run ./cmd/cohesion ingest coaches --file coach_roles.csv`,
}

var (
	ingestFeedCmd = &cobra.Command{
		Use:   "feed",
		Short: "시즌 피드 적재 (games, plays, participation, players)",
		RunE:  runIngestFeed,
	}

	ingestCoachesCmd = &cobra.Command{
		Use:   "coaches",
		Short: "코치 역할 윈도우 전체 교체 (CSV 또는 HTML)",
		RunE:  runIngestCoaches,
	}

	ingestSeasons []int
	ingestSource  string
	coachesFile   string
)

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.AddCommand(ingestFeedCmd)
	ingestCmd.AddCommand(ingestCoachesCmd)

	ingestCmd.PersistentFlags().StringVar(&ingestSource, "source", "", "feed source (local|http|s3|gcs)")
	ingestFeedCmd.Flags().IntSliceVar(&ingestSeasons, "season", nil, "시즌 (반복 또는 콤마 구분)")
	_ = ingestFeedCmd.MarkFlagRequired("season")
	ingestCoachesCmd.Flags().StringVar(&coachesFile, "file", "coach_roles.csv", "코치 역할 파일 이름")
}

func newLoader(cmd *cobra.Command, d *deps) (*ingest.Loader, error) {
	src, err := ingest.NewSource(cmd.Context(), ingestSource, d.cfg, d.log)
	if err != nil {
		return nil, fmt.Errorf("open feed source: %w", err)
	}
	d.log.WithField("source", src.String()).Info("Using feed source")
	return ingest.NewLoader(src, ingest.NewRepository(d.db.Pool), d.log.Component("ingest")), nil
}

func runIngestFeed(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	loader, err := newLoader(cmd, d)
	if err != nil {
		return err
	}

	PrintHeader("Feed Ingest")
	widths := []int{6, 6, 8, 13, 8, 13}
	PrintTableHeader([]string{"Season", "Games", "Plays", "Participation", "Players", "Skipped plays"}, widths)

	for _, season := range ingestSeasons {
		res, err := loader.LoadSeason(cmd.Context(), season)
		if err != nil {
			return fmt.Errorf("season %d: %w", season, err)
		}
		PrintTableRow([]string{
			fmt.Sprint(res.Season),
			fmt.Sprint(res.Games),
			fmt.Sprint(res.Plays),
			fmt.Sprint(res.Participation),
			fmt.Sprint(res.Players),
			fmt.Sprint(res.SkippedPlays),
		}, widths)
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Loaded %d season(s)", len(ingestSeasons)))
	return nil
}

func runIngestCoaches(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	loader, err := newLoader(cmd, d)
	if err != nil {
		return err
	}

	n, err := loader.LoadCoaches(cmd.Context(), coachesFile)
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Replaced coach roles with %d window(s) from %s", n, coachesFile))
	return nil
}
