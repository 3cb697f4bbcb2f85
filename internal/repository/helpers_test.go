package repo

import (
	"testing"

	"go.uber.org/zap"

	"game_review/internal/bootstrap"
)

func nopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func testConfig(t *testing.T, driver string) *bootstrap.Config {
	t.Helper()
	cfg, err := bootstrap.Setup("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	cfg.CacheDriver = driver
	return cfg
}
