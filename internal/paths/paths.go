// Package paths resolves where jellyfix keeps its own state.
//
// When running with sudo, paths resolve to the invoking user's directories
// (via SUDO_USER) instead of root's. JELLYFIX_HOME overrides everything.
package paths

import (
	"os"
	"os/user"
	"path/filepath"
)

// HomeEnv overrides the application directory when set
const HomeEnv = "JELLYFIX_HOME"

// UserHomeDir returns the home directory of the actual user.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir, nil
		}
	}
	return os.UserHomeDir()
}

// AppDir returns ~/.config/jellyfix for the actual user, or $JELLYFIX_HOME.
func AppDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jellyfix"), nil
}

func appPath(elem ...string) (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// ConfigPath returns the JSON settings file path.
func ConfigPath() (string, error) { return appPath("config.json") }

// DatabasePath returns the operation journal database path.
func DatabasePath() (string, error) { return appPath("journal.db") }

// PlansDir returns the directory holding saved plans.
func PlansDir() (string, error) { return appPath("plans") }

// CacheDir returns the image cache directory.
func CacheDir() (string, error) { return appPath("cache") }

// LockPath returns the lock file held while a plan is applied.
func LockPath() (string, error) { return appPath("apply.lock") }

// LogPath returns the default log file.
func LogPath() (string, error) { return appPath("logs", "jellyfix.log") }
