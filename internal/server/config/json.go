package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/totpkeeper/internal/flagx"
)

// parseJSON overlays the file named by -c/-config onto config. Keys absent
// from the file keep their current values.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := json.Unmarshal(file, config); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
