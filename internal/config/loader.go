package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOOLKIT_"

// ConfigPathEnvVar can point at a config file when --config is not given.
const ConfigPathEnvVar = "TOOLKIT_CONFIG"

// DefaultConfigPaths lists the files searched, in order, when no path is given.
func DefaultConfigPaths() []string {
	return []string{
		"toolkit.yaml",
		"toolkit.yml",
		filepath.Join(GetDataDir(), "config.yaml"),
	}
}

// Load builds the configuration from defaults, an optional file and the
// environment. An explicit path (or TOOLKIT_CONFIG) must exist; default
// locations are optional.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	configPath, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fileLoadError(configPath, err)
		}
	}

	// Layer 3: environment (TOOLKIT_RECOMMEND_ACTIVITY_LIMIT -> recommend.activity_limit)
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    configPath,
			Message: fmt.Sprintf("failed to decode configuration: %v", err),
			Hint:    "Check value types (durations look like 24h, 30s)",
		}
	}

	cfg.Database.Path = expandHome(cfg.Database.Path)
	cfg.Catalog.Path = expandHome(cfg.Catalog.Path)

	if err := cfg.Validate(); err != nil {
		var invalid *InvalidConfigError
		if errors.As(err, &invalid) {
			invalid.Path = configPath
		}
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath picks the file to load: explicit path, then the env
// var, then the first default path that exists.
func resolveConfigPath(path string) (string, error) {
	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}

	if path != "" {
		path = expandHome(path)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", &ConfigNotFoundError{
					Path: path,
					Hint: "Create the file or drop --config to use defaults",
				}
			}
			return "", fmt.Errorf("failed to access config: %w", err)
		}
		return path, nil
	}

	for _, candidate := range DefaultConfigPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// fileLoadError turns koanf file errors into typed config errors.
func fileLoadError(path string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return &PermissionError{
			Path:    path,
			Op:      "read",
			Fix:     getReadPermissionFix(path),
			Details: getPermissionDetails(path),
		}
	}
	return &InvalidConfigError{
		Path:    path,
		Message: fmt.Sprintf("YAML parse error: %v", err),
		Hint:    "Fix the YAML syntax or remove the file to use defaults",
	}
}

// envTransformFunc maps TOOLKIT_SECTION_KEY_NAME to section.key_name.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		// TOOLKIT_CONFIG selects the file, it is not a setting.
		return ""
	}
	return strings.Replace(key, "_", ".", 1)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// getReadPermissionFix returns platform-specific fix command
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	default: // unix-like
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails checks file ownership and permissions
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return "" // Not applicable on Windows
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
