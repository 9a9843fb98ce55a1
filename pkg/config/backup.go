package config

import (
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/sidkik/treemirror/pkg/errors"
)

// DefaultPath is where the configuration is read from unless another path is
// given on the command line.
const DefaultPath = "config/config.yml"

const (
	sourceField = "backup_config.source_filepath"
	targetField = "backup_config.target_filepath"
)

// document is the layout of the configuration file.
type document struct {
	BackupConfig Backup `json:"backup_config"`
}

// Backup contains the directories that should be mirrored.
type Backup struct {
	// SourceFilepath is the directory that's mirrored. Required.
	SourceFilepath string `json:"source_filepath"`

	// TargetFilepath is the directory that holds the mirror. It's created if
	// it doesn't exist. Required.
	TargetFilepath string `json:"target_filepath"`

	// Only populated and consumed by treemirror. Never set by user.
	path string
}

// GetPath returns the filepath that the config was parsed from.
func (c Backup) GetPath() string {
	return c.path
}

// homedirExpand will be overridden in mock tests
var homedirExpand = homedir.Expand

// ParseBackup parses the backup configuration at `path`. All errors are
// returned as ConfigErrors.
//
// The returned paths are absolute and cleaned. A `~` prefix is expanded to
// the user's home directory, and relative paths are evaluated relative to the
// directory containing the config file.
func ParseBackup(path string) (Backup, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Backup{}, errors.ConfigError{Path: path,
			Err: errors.WithContext(err, "resolve config path")}
	}

	var doc document
	if err := parseConfig(absPath, &doc); err != nil {
		return Backup{}, errors.ConfigError{Path: path, Err: err}
	}

	config := doc.BackupConfig
	config.path = absPath
	fields := []struct {
		name  string
		value *string
	}{
		{sourceField, &config.SourceFilepath},
		{targetField, &config.TargetFilepath},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			return Backup{}, errors.ConfigError{Path: path,
				Err: errors.MissingFieldError{Field: field.name}}
		}

		resolved, err := resolvePath(*field.value, filepath.Dir(absPath))
		if err != nil {
			return Backup{}, errors.ConfigError{Path: path,
				Err: errors.WithContext(err, field.name)}
		}
		*field.value = resolved
	}

	if overlaps(config.SourceFilepath, config.TargetFilepath) {
		return Backup{}, errors.ConfigError{Path: path, Err: errors.NewFriendlyError(
			"The source %q and target %q overlap.\n"+
				"The backup directory must not be inside the source "+
				"directory, or vice versa.",
			config.SourceFilepath, config.TargetFilepath)}
	}
	return config, nil
}

func resolvePath(path, relativeTo string) (string, error) {
	expanded, err := homedirExpand(path)
	if err != nil {
		return "", errors.WithContext(err, "expand homedir")
	}

	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(relativeTo, expanded)
	}
	return filepath.Clean(expanded), nil
}

// overlaps returns whether either path is equal to, or a child of, the other.
func overlaps(a, b string) bool {
	return isWithin(a, b) || isWithin(b, a)
}

func isWithin(parent, path string) bool {
	rel, err := filepath.Rel(parent, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
