package workspace

import (
	"fmt"
	"regexp"

	"github.com/matheus3301/conversa/internal/config"
)

// DefaultName is used when neither a flag nor the global config names one.
const DefaultName = "main"

var nameRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateName rejects names that are unsafe as a directory.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("invalid workspace name %q: must match ^[a-z0-9_-]{1,64}$", name)
	}
	return nil
}

// Resolve picks the active workspace: flag, then default_workspace from the
// global config, then DefaultName.
func Resolve(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg, err := config.Load(GlobalConfigPath()); err == nil && cfg.DefaultWorkspace != "" {
		return cfg.DefaultWorkspace
	}
	return DefaultName
}
