package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "스키마 마이그레이션",
	Long: `golang-migrate 기반 스키마 마이그레이션을 적용하거나 되돌립니다.

Subcommands:
  up       - 대기 중인 마이그레이션 모두 적용
  down     - 마이그레이션 되돌리기 (--steps)
  version  - 현재 스키마 버전

Example:
  go run ./cmd/cohesion migrate up
  go run ./cmd/cohesion migrate down --steps 1`,
}

var (
	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "마이그레이션 적용",
		RunE:  runMigrateUp,
	}

	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "마이그레이션 되돌리기",
		RunE:  runMigrateDown,
	}

	migrateVersionCmd = &cobra.Command{
		Use:   "version",
		Short: "현재 스키마 버전",
		RunE:  runMigrateVersion,
	}

	migrateSteps int
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)

	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "되돌릴 마이그레이션 수")
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.db.MigrateUp(); err != nil {
		return err
	}
	return printVersion(d)
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	if migrateSteps < 1 {
		return fmt.Errorf("--steps must be >= 1")
	}

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.db.MigrateDown(migrateSteps); err != nil {
		return err
	}
	return printVersion(d)
}

func runMigrateVersion(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	return printVersion(d)
}

func printVersion(d *deps) error {
	version, dirty, err := d.db.MigrationVersion()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		PrintWarning(fmt.Sprintf("Schema version %d is dirty", version))
		return nil
	}
	PrintSuccess(fmt.Sprintf("Schema version %d", version))
	return nil
}
