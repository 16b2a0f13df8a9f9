// Package workspace locates the files of a named workspace under
// ~/.conversa and guards it with a single-daemon lock.
package workspace

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the base directory.
const HomeEnv = "CONVERSA_HOME"

// BaseDir returns $CONVERSA_HOME, or ~/.conversa when unset.
func BaseDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".conversa")
}

// Dir returns the directory of workspace name.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "workspaces", name)
}

// SocketPath returns the daemon's Unix socket.
func SocketPath(name string) string {
	return filepath.Join(Dir(name), "daemon.sock")
}

func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// ConfigPath returns the workspace config file.
func ConfigPath(name string) string {
	return filepath.Join(Dir(name), "config.toml")
}

// DBPath returns the default chat database.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "chat.db")
}

// MediaDir returns the local object store root.
func MediaDir(name string) string {
	return filepath.Join(Dir(name), "media")
}

func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the daemon log file.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "conversad.log")
}

// GlobalConfigPath returns ~/.conversa/config.toml.
func GlobalConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the workspace tree with owner-only permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name), MediaDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
