package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EmbeddedRootConfigurationReference identifies the embedded fallback
	// configuration source.
	EmbeddedRootConfigurationReference = "embedded default configuration"

	homeConfigurationRelativeDirectory = ".procurement-flow"
	configurationBaseName              = "config"
	// CollectionsOverrideEnvironmentVariable points at an optional yaml file
	// overriding the collection names.
	CollectionsOverrideEnvironmentVariable = "PROCUREMENT_COLLECTIONS_CONFIG"
)

//go:embed default_root_configuration.yaml
var embeddedRootConfigurationBytes []byte

// Load resolves the configuration: an explicit path when given, otherwise
// ./config.yaml, then $HOME/.procurement-flow/config.yaml, then the embedded
// default. Collection names may additionally be overridden by the yaml file
// named in PROCUREMENT_COLLECTIONS_CONFIG.
func Load(explicitPath string) (Root, string, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	reference := explicitPath
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return Root{}, "", fmt.Errorf("read explicit configuration %s: %w", explicitPath, err)
		}
	} else {
		v.SetConfigName(configurationBaseName)
		v.AddConfigPath(".")
		if homeDirectory := os.Getenv("HOME"); homeDirectory != "" {
			v.AddConfigPath(filepath.Join(homeDirectory, homeConfigurationRelativeDirectory))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Root{}, "", fmt.Errorf("read configuration: %w", err)
			}
			if readErr := v.ReadConfig(bytes.NewReader(embeddedRootConfigurationBytes)); readErr != nil {
				return Root{}, "", fmt.Errorf("read embedded configuration: %w", readErr)
			}
			reference = EmbeddedRootConfigurationReference
		} else {
			reference = v.ConfigFileUsed()
		}
	}

	var rootConfiguration Root
	if err := v.Unmarshal(&rootConfiguration); err != nil {
		return Root{}, "", fmt.Errorf("unmarshal configuration %s: %w", reference, err)
	}
	if err := rootConfiguration.Validate(); err != nil {
		return Root{}, "", err
	}

	if overridePath := os.Getenv(CollectionsOverrideEnvironmentVariable); overridePath != "" {
		overridden, overrideErr := loadCollectionsOverride(overridePath, rootConfiguration.Collections)
		if overrideErr != nil {
			return Root{}, "", overrideErr
		}
		rootConfiguration.Collections = overridden
	}
	rootConfiguration.Collections = rootConfiguration.Collections.Normalize()

	return rootConfiguration, reference, nil
}

type collectionsOverrideFile struct {
	Collections Collections `yaml:"collections"`
}

func loadCollectionsOverride(path string, base Collections) (Collections, error) {
	content, readErr := os.ReadFile(filepath.Clean(path))
	if readErr != nil {
		return Collections{}, fmt.Errorf("read collections override %s: %w", path, readErr)
	}
	var overrideFile collectionsOverrideFile
	if err := yaml.Unmarshal(content, &overrideFile); err != nil {
		return Collections{}, fmt.Errorf("unmarshal collections override %s: %w", path, err)
	}
	merged := base
	if overrideFile.Collections.Suppliers != "" {
		merged.Suppliers = overrideFile.Collections.Suppliers
	}
	if overrideFile.Collections.Contracts != "" {
		merged.Contracts = overrideFile.Collections.Contracts
	}
	if overrideFile.Collections.Audits != "" {
		merged.Audits = overrideFile.Collections.Audits
	}
	return merged, nil
}
