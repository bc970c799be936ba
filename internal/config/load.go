// Package config reads backup configuration files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
)

// Format selects the decoder used for a configuration file.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

type fileConfig struct {
	BackupDirectory string          `toml:"backup_directory" yaml:"backup_directory"`
	Image           string          `toml:"image" yaml:"image"`
	Shell           string          `toml:"shell" yaml:"shell"`
	ComposeCommand  string          `toml:"compose_command" yaml:"compose_command"`
	PullPolicy      string          `toml:"pull_policy" yaml:"pull_policy"`
	Wait            bool            `toml:"wait" yaml:"wait"`
	WaitTimeout     string          `toml:"wait_timeout" yaml:"wait_timeout"`
	ContinueOnError bool            `toml:"continue_on_error" yaml:"continue_on_error"`
	Projects        []projectConfig `toml:"projects" yaml:"projects"`
}

type projectConfig struct {
	Service       string `toml:"service" yaml:"service"`
	DockerCompose string `toml:"docker_compose" yaml:"docker_compose"`
	Path          string `toml:"path" yaml:"path"`
	BackupCommand string `toml:"backup_command" yaml:"backup_command"`
}

// FormatFor picks the decoder from the file extension. TOML is the default.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Load reads, decodes and normalizes the configuration file at path.
func Load(path string) (backup.RunConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return backup.RunConfiguration{}, &backup.ConfigError{Path: path, Msg: "read file", Err: err}
	}

	cfg, err := Parse(data, FormatFor(path))
	if err != nil {
		var cfgErr *backup.ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Path == "" {
			cfgErr.Path = path
		}
		return backup.RunConfiguration{}, err
	}
	return cfg, nil
}

// Parse decodes data in the given format and normalizes the result.
func Parse(data []byte, format Format) (backup.RunConfiguration, error) {
	var file fileConfig
	if err := decode(data, format, &file); err != nil {
		return backup.RunConfiguration{}, err
	}

	cfg, err := file.toRunConfiguration()
	if err != nil {
		return backup.RunConfiguration{}, err
	}
	if err := cfg.Normalize(); err != nil {
		return backup.RunConfiguration{}, err
	}
	return cfg, nil
}

func decode(data []byte, format Format, file *fileConfig) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(file); err != nil {
			if errors.Is(err, io.EOF) {
				return &backup.ConfigError{Msg: "empty configuration"}
			}
			return &backup.ConfigError{Msg: "decode yaml", Err: err}
		}
	case FormatTOML, "":
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(file); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return &backup.ConfigError{Msg: "unknown keys " + unknownKeys(strict)}
			}
			return &backup.ConfigError{Msg: "decode toml", Err: err}
		}
	default:
		return &backup.ConfigError{Msg: fmt.Sprintf("unsupported format %q", format)}
	}
	return nil
}

func (f fileConfig) toRunConfiguration() (backup.RunConfiguration, error) {
	cfg := backup.RunConfiguration{
		BackupDirectory: f.BackupDirectory,
		Image:           f.Image,
		Shell:           f.Shell,
		ComposeCommand:  f.ComposeCommand,
		PullPolicy:      backup.PullPolicy(f.PullPolicy),
		Wait:            f.Wait,
		ContinueOnError: f.ContinueOnError,
	}

	if raw := strings.TrimSpace(f.WaitTimeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return backup.RunConfiguration{}, &backup.ConfigError{Msg: "invalid wait_timeout", Err: err}
		}
		cfg.WaitTimeout = timeout
	}

	cfg.Projects = make([]backup.ProjectConfig, len(f.Projects))
	for idx, project := range f.Projects {
		cfg.Projects[idx] = backup.ProjectConfig{
			Service:       project.Service,
			DockerCompose: project.DockerCompose,
			Path:          project.Path,
			BackupCommand: project.BackupCommand,
		}
	}

	return cfg, nil
}

func unknownKeys(strict *toml.StrictMissingError) string {
	keys := make([]string, 0, len(strict.Errors))
	for _, decodeErr := range strict.Errors {
		keys = append(keys, strings.Join(decodeErr.Key(), "."))
	}
	return strings.Join(keys, ", ")
}
