package hintsync

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when no config file exists in dir or any parent.
var ErrConfigNotFound = errors.New("no .hintsync.yaml found")

// Config represents the .hintsync.yaml configuration file.
type Config struct {
	// Language server to spawn and talk to
	Server ServerConfig `yaml:"server"`

	// Which hint categories to render
	Hints Hints `yaml:"hints"`
}

// ServerConfig holds the command used to start the analysis service.
type ServerConfig struct {
	// Executable name or path (e.g., "gopls", "rust-analyzer")
	Command string `yaml:"command"`

	// Arguments passed to the command
	Args []string `yaml:"args,omitempty"`

	// Language identifier sent with didOpen (e.g., "go", "rust")
	LanguageID string `yaml:"languageId,omitempty"`
}

// Hints is the engine's enabled configuration: a master switch plus one
// flag per hint category. It is a comparable value type so the coordinator
// can detect no-op configuration changes with ==.
type Hints struct {
	Enabled        bool `yaml:"enabled"`
	TypeHints      bool `yaml:"typeHints"`
	ParameterHints bool `yaml:"parameterHints"`
}

// Enables reports whether the given category should be rendered.
func (h Hints) Enables(kind InlayHintKind) bool {
	if !h.Enabled {
		return false
	}

	switch kind {
	case KindType:
		return h.TypeHints
	case KindParameter:
		return h.ParameterHints
	default:
		return false
	}
}

// DefaultHints enables every category.
func DefaultHints() Hints {
	return Hints{Enabled: true, TypeHints: true, ParameterHints: true}
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".hintsync.yaml", ".hintsync.yml", "hintsync.yaml", "hintsync.yml"}

// LoadConfig finds and loads the nearest .hintsync.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	cfg := &Config{Hints: DefaultHints()}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
