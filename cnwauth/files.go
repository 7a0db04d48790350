package cnwauth

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// DeleteExpiredFiles removes regular files in dir whose modification time is
// before cutoff. It does not recurse. Individual removal failures are logged
// and skipped. Returns the number of files removed.
func DeleteExpiredFiles(dir string, cutoff time.Time, log zerolog.Logger) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("dir", dir).Msg("read temp dir")
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("file", path).Msg("remove expired file")
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Str("dir", dir).Msg("pruned expired files")
	}
	return removed
}
