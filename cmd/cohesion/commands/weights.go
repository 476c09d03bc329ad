package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/internal/weights"
)

// weightsCmd represents the weights command
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Role-pair 가중치 관리",
}

var (
	weightsLoadCmd = &cobra.Command{
		Use:   "load",
		Short: "가중치 테이블 교체 (YAML/TOML, 생략 시 기본 테이블)",
		Long: `role_pair_weights 테이블을 한 트랜잭션으로 교체합니다.

--file 이 없으면 ROLE_WEIGHTS_FILE, 그것도 없으면 내장 기본 테이블을 사용합니다.

Example:
  go run ./cmd/cohesion weights load
  go run ./cmd/cohesion weights load --file seeds/role_weights.yaml`,
		RunE: runWeightsLoad,
	}

	weightsFile string
)

func init() {
	rootCmd.AddCommand(weightsCmd)
	weightsCmd.AddCommand(weightsLoadCmd)

	weightsLoadCmd.Flags().StringVar(&weightsFile, "file", "", "YAML 또는 TOML 가중치 파일")
}

func runWeightsLoad(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	path := weightsFile
	if path == "" {
		path = d.cfg.Scoring.WeightsFile
	}

	entries, err := weights.Resolve(path)
	if err != nil {
		return fmt.Errorf("load weights: %w", err)
	}

	repo := weights.NewRepository(d.db.Pool)
	if _, err := repo.Replace(cmd.Context(), entries); err != nil {
		return err
	}

	counts, err := repo.Count(cmd.Context())
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "built-in defaults"
	}
	PrintSuccess(fmt.Sprintf("Loaded role-pair weights from %s", source))
	for _, side := range contracts.Sides {
		PrintKeyValue(side.String(), fmt.Sprintf("%d rows", counts[side]), 8)
	}
	return nil
}
