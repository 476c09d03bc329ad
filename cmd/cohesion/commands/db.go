package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/cohesion/pkg/redis"
)

// dbCmd groups database utilities
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "데이터베이스 유틸리티",
}

// dbCheckCmd represents the db check command
var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "PostgreSQL / Redis 연결 테스트",
	Long: `데이터베이스 연결을 테스트하고 풀 통계를 표시합니다.

이 명령어는:
- config에서 DATABASE_URL 로드
- Ping 및 Health Check 실행
- 스키마 버전 표시
- Redis 활성화 시 Redis Ping

Example:
  go run ./cmd/cohesion db check`,
	RunE: runDBCheck,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbCheckCmd)
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	PrintHeader("Database Connection Check")

	d, err := bootstrap()
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}
	defer d.Close()
	PrintSuccess(fmt.Sprintf("Connected (ENV: %s)", d.cfg.Env))

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	status, err := d.db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ health check failed: %w", err)
	}

	fmt.Println("\n📊 Connection Pool Statistics:")
	PrintKeyValue("Response Time", status.ResponseTime.String(), 16)
	PrintKeyValue("Total Conns", fmt.Sprint(status.Stats.TotalConns), 16)
	PrintKeyValue("Idle Conns", fmt.Sprint(status.Stats.IdleConns), 16)
	PrintKeyValue("Acquired Conns", fmt.Sprint(status.Stats.AcquiredConns), 16)
	PrintKeyValue("Max Conns", fmt.Sprint(status.Stats.MaxConns), 16)
	fmt.Println()

	if err := printVersion(d); err != nil {
		return err
	}

	rc, err := redis.New(d.cfg)
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}
	defer rc.Close()
	if rc.Enabled() {
		PrintSuccess("Redis ping successful")
	} else {
		fmt.Println("ℹ️  Redis disabled (pipeline lock is a no-op)")
	}

	return nil
}
