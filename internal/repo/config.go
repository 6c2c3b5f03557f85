// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package repo

import (
	"os"

	"gopkg.in/yaml.v2"
)

// DefaultBranch is the branch HEAD points at in a new repository
const DefaultBranch = "main"

// Config represents the repository configuration file
type Config struct {
	path          string
	DefaultBranch string `yaml:"default-branch"`
}

func defaultConfig(path string) *Config {
	return &Config{path: path, DefaultBranch: DefaultBranch}
}

// CreateConfig creates the configuration file with defaults if it does
// not exist yet
func CreateConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		config := defaultConfig(path)
		if err := config.Save(); err != nil {
			return nil, err
		}
		return config, nil
	}

	return OpenConfig(path)
}

// OpenConfig opens path
func OpenConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := defaultConfig(path)
	if err := yaml.Unmarshal(buf, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves the configuration file
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return writeFileAtomic(c.path, data, 0600)
}
