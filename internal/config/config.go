package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dkoosis/scame/pkg/options"
)

// Configuration file names, in lookup order.
const (
	YAMLFileName = ".scame.yaml"
	TOMLFileName = ".scame.toml"
)

// File is a loaded configuration file.
type File struct {
	// Path is where the file was read from; empty when none was found.
	Path string

	// Options holds the defaults overlaid with the file's settings.
	Options *options.Options

	// keys lists the top-level settings present in the file.
	keys map[string]bool
}

// Has reports whether the file sets key, a top-level setting name such as
// "max_line_length".
func (f *File) Has(key string) bool {
	return f.keys[key]
}

// Load reads the configuration file at path. An empty path looks the file
// up with FindPath; when there is none, Load returns the defaults.
func Load(path string) (*File, error) {
	if path == "" {
		path = FindPath()
	}
	f := &File{Path: path, Options: options.Default(), keys: make(map[string]bool)}
	if path == "" {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw map[string]any
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(f.Options); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, f.Options); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	for key := range raw {
		f.keys[key] = true
	}
	return f, nil
}

// FindPath returns the configuration file to use: the working directory
// first, then the user configuration directory. It returns "" when there
// is none.
func FindPath() string {
	for _, name := range []string{YAMLFileName, TOMLFileName} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	for _, name := range []string{YAMLFileName, TOMLFileName} {
		p := filepath.Join(configHome, "scame", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
