package trackerlog

import (
	"os"
	"strings"

	logging "github.com/ipfs/go-log/v2"
)

// SetupLogLevels sets every subsystem to level unless GOLOG_LOG_LEVEL is set.
// An empty level means INFO.
func SetupLogLevels(level string) error {
	if _, set := os.LookupEnv("GOLOG_LOG_LEVEL"); set {
		return nil
	}
	if strings.TrimSpace(level) == "" {
		level = "INFO"
	}
	return logging.SetLogLevel("*", level)
}
