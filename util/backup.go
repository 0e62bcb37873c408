package util

import (
	"log/slog"
	"os"
)

// BackupSuffix is appended to an output that is moved aside before overwrite.
const BackupSuffix = ".bak"

// BackupExisting renames an existing file at path to path+".bak". It is best
// effort: a failed rename is logged and the caller carries on overwriting.
func BackupExisting(path string, logger *slog.Logger) {
	logger = loggerOrDiscard(logger)
	if !Exists(path) {
		return
	}
	bak := path + BackupSuffix
	if err := os.Rename(path, bak); err != nil {
		logger.Warn("backup of existing output failed", "path", path, "error", err)
		return
	}
	logger.Info("existing output moved aside", "path", path, "backup", bak)
}
