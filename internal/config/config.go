// Package config defines the unified configuration for the procurement
// pipeline and its loader.
package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	emptyModelsErrorMessage         = "config.models is empty"
	missingDefaultModelErrorMessage = "no default model found (set models[].default: true)"
	demoCollectionSuffix            = "_demo"
)

type Root struct {
	Common      Common      `mapstructure:"common"`
	Models      []Model     `mapstructure:"models"`
	Embedding   Embedding   `mapstructure:"embedding"`
	Store       Store       `mapstructure:"store"`
	Collections Collections `mapstructure:"collections"`
	Compliance  Compliance  `mapstructure:"compliance"`
}

type Common struct {
	API struct {
		Endpoint  string `mapstructure:"endpoint"`
		APIKeyEnv string `mapstructure:"api_key_env"`
	} `mapstructure:"api"`
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
	Defaults struct {
		Samples        int     `mapstructure:"samples"`
		Threshold      float64 `mapstructure:"threshold"`
		TopK           int     `mapstructure:"top_k"`
		TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	} `mapstructure:"defaults"`
}

type Model struct {
	Name                string `mapstructure:"name"`
	Provider            string `mapstructure:"provider"`
	ModelID             string `mapstructure:"model_id"`
	Default             bool   `mapstructure:"default"`
	SupportsTemperature bool   `mapstructure:"supports_temperature"`
	// DefaultTemperature values of exactly 0 or 1 mean "use the server
	// default": no temperature field is sent in the request.
	DefaultTemperature  float64 `mapstructure:"default_temperature"`
	MaxCompletionTokens int     `mapstructure:"max_completion_tokens"`
}

type Embedding struct {
	ModelID string `mapstructure:"model_id"`
	// Dimensions pins the embedding width the vector store accepts, so a
	// model change between seeding and querying fails loudly; 0 disables
	// the check.
	Dimensions int `mapstructure:"dimensions"`
}

type Store struct {
	Path string `mapstructure:"path"`
}

// Collections names the three vector-store collections the pipeline reads.
// Names are normalized to carry a _demo suffix so a seed run can never
// clobber a production collection.
type Collections struct {
	Suppliers string `mapstructure:"suppliers" yaml:"suppliers"`
	Contracts string `mapstructure:"contracts" yaml:"contracts"`
	Audits    string `mapstructure:"audits" yaml:"audits"`
}

type Compliance struct {
	Rules string `mapstructure:"rules"`
}

func (root Root) Validate() error {
	if len(root.Models) == 0 {
		return errors.New(emptyModelsErrorMessage)
	}
	if _, ok := root.DefaultModel(); !ok {
		return errors.New(missingDefaultModelErrorMessage)
	}
	if strings.TrimSpace(root.Store.Path) == "" {
		return errors.New("config.store.path is empty")
	}
	if root.Embedding.Dimensions < 0 {
		return fmt.Errorf("config.embedding.dimensions must not be negative, got %d", root.Embedding.Dimensions)
	}
	return nil
}

func (root Root) DefaultModel() (Model, bool) {
	for _, modelConfiguration := range root.Models {
		if modelConfiguration.Default {
			return modelConfiguration, true
		}
	}
	return Model{}, false
}

func (root Root) FindModel(name string) (Model, bool) {
	for _, modelConfiguration := range root.Models {
		if modelConfiguration.Name == name {
			return modelConfiguration, true
		}
	}
	return Model{}, false
}

// Normalize enforces the demo suffix on every collection name.
func (c Collections) Normalize() Collections {
	return Collections{
		Suppliers: ensureDemoSuffix(c.Suppliers),
		Contracts: ensureDemoSuffix(c.Contracts),
		Audits:    ensureDemoSuffix(c.Audits),
	}
}

func ensureDemoSuffix(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return trimmed
	}
	if strings.HasSuffix(trimmed, demoCollectionSuffix) {
		return trimmed
	}
	return fmt.Sprintf("%s%s", trimmed, demoCollectionSuffix)
}
