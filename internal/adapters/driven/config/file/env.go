package file

import (
	"errors"
	"fmt"
	"os"

	"github.com/subosito/gotenv"
)

// LoadEnv loads KEY=VALUE pairs from the given .env files into the process
// environment. Missing files are skipped. Variables already set win.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := gotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}
