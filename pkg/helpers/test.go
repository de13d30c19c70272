package helpers

import (
	"context"
	"log/slog"

	"github.com/GregMSThompson/copilot-dashboard/pkg/logger"
)

// TestCtx returns a context carrying a discard logger.
func TestCtx() context.Context {
	log := slog.New(logger.NewTestHandler(slog.LevelDebug))
	return logger.ToContext(context.Background(), log)
}
