// Package config holds the launcher's base command as named fields.
//
// The defaults render the command line the Debian package has always used:
//
//	java -Xmx32m -Djava.io.tmpdir=/var/lib/logstash/ -jar /usr/share/logstash/logstash.jar agent -f /etc/logstash/conf.d --log /var/log/logstash/logstash.log
//
// A YAML file may override any field.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	launchererrors "logstash-launcher/internal/errors"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the launcher looks for an optional override file.
const DefaultPath = "/etc/logstash/launcher.yaml"

var heapPattern = regexp.MustCompile(`^[0-9]+[kKmMgG]?$`)

// LaunchConfig describes the base command.
type LaunchConfig struct {
	// Interpreter is looked up on PATH at launch time.
	Interpreter string `yaml:"interpreter"`
	// MaxHeap is the JVM -Xmx value, e.g. "32m". Empty omits the flag.
	MaxHeap string `yaml:"max_heap"`
	// TmpDir is passed as java.io.tmpdir.
	TmpDir string `yaml:"tmp_dir"`
	// JarPath is the agent archive run with -jar.
	JarPath string `yaml:"jar_path"`
	// Subcommand is the first argument to the agent.
	Subcommand string `yaml:"subcommand"`
	// ConfigDir is passed with -f.
	ConfigDir string `yaml:"config_dir"`
	// LogPath is passed with --log.
	LogPath string `yaml:"log_path"`
	// PreserveArgs keeps every extra argument as one token instead of
	// re-splitting the joined command line on whitespace.
	PreserveArgs bool `yaml:"preserve_args"`
	// LauncherLog, when set, is a JSONL file the launcher records its own
	// launches in. Empty keeps the launcher from writing any file.
	LauncherLog string `yaml:"launcher_log"`
}

// Default returns the stock configuration.
func Default() *LaunchConfig {
	return &LaunchConfig{
		Interpreter: "java",
		MaxHeap:     "32m",
		TmpDir:      "/var/lib/logstash/",
		JarPath:     "/usr/share/logstash/logstash.jar",
		Subcommand:  "agent",
		ConfigDir:   "/etc/logstash/conf.d",
		LogPath:     "/var/log/logstash/logstash.log",
	}
}

// Load overlays the YAML file at path onto the defaults. A missing file at
// DefaultPath yields the defaults; a missing file anywhere else is an error.
func Load(path string) (*LaunchConfig, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if path == DefaultPath {
				return cfg, nil
			}
			return nil, launchererrors.NewConfigMissingError(path)
		}
		return nil, launchererrors.NewConfigInvalidError(fmt.Sprintf("failed to read %s", path), err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, launchererrors.NewConfigInvalidError(fmt.Sprintf("failed to parse %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every field renders to the tokens it is meant to.
func (c *LaunchConfig) Validate() error {
	fields := []struct {
		name     string
		value    string
		required bool
	}{
		{"interpreter", c.Interpreter, true},
		{"tmp_dir", c.TmpDir, false},
		{"jar_path", c.JarPath, true},
		{"subcommand", c.Subcommand, true},
		{"config_dir", c.ConfigDir, true},
		{"log_path", c.LogPath, true},
	}
	for _, f := range fields {
		if f.required && f.value == "" {
			return launchererrors.NewConfigValidationError(f.name, f.value, "is required")
		}
		// Whitespace would be split apart when the command line is tokenized.
		if strings.ContainsAny(f.value, " \t\n\r\v\f") {
			return launchererrors.NewConfigValidationError(f.name, f.value, "must not contain whitespace")
		}
	}

	if c.MaxHeap != "" && !heapPattern.MatchString(c.MaxHeap) {
		return launchererrors.NewConfigValidationError("max_heap", c.MaxHeap, "must look like 32m, 512k or 1g")
	}
	return nil
}

// BaseTokens returns the base command as separate tokens, interpreter first.
func (c *LaunchConfig) BaseTokens() []string {
	tokens := []string{c.Interpreter}
	if c.MaxHeap != "" {
		tokens = append(tokens, "-Xmx"+c.MaxHeap)
	}
	if c.TmpDir != "" {
		tokens = append(tokens, "-Djava.io.tmpdir="+c.TmpDir)
	}
	return append(tokens,
		"-jar", c.JarPath,
		c.Subcommand,
		"-f", c.ConfigDir,
		"--log", c.LogPath,
	)
}

// BaseCommand returns the base command as a single space-separated string.
func (c *LaunchConfig) BaseCommand() string {
	return strings.Join(c.BaseTokens(), " ")
}

// Marshal renders the configuration as YAML.
func (c *LaunchConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
