package alloc

import (
	"os"

	"go.uber.org/zap"
)

// Runtime debug flag for allocation logging - controlled by POOLALLOC_LOG_ALLOC env var.
// Only consulted when no logger is passed with WithLogger.
var logAlloc = os.Getenv("POOLALLOC_LOG_ALLOC") != ""

func defaultLogger() *zap.Logger {
	if !logAlloc {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("alloc")
}
