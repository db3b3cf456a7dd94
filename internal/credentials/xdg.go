package credentials

import (
	"fmt"
	"os"
	"path/filepath"
)

func DefaultSettingsPath() string {
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdgConfigHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(xdgConfigHome, "weasel", "settings.json")
}

// LegacySettingsPath is the working-directory file older deployments used.
func LegacySettingsPath() string {
	return "settings.json"
}

// ResolveSettingsPath picks explicit when set, then the XDG path, then the
// legacy path. When neither file exists the XDG path is returned.
func ResolveSettingsPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	def := DefaultSettingsPath()
	if def != "" && FileExists(def) {
		return def
	}
	if FileExists(LegacySettingsPath()) {
		return LegacySettingsPath()
	}
	return def
}

func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
