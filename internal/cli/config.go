package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when --config is not
// given. A missing default file is not an error.
const DefaultConfigFile = "paperminter.yaml"

// FileConfig is the YAML configuration file. Secrets are never read from
// it; they come from the environment, a .env file or a prompt.
type FileConfig struct {
	Backend string     `yaml:"backend"`
	Network string     `yaml:"network"`
	Journal string     `yaml:"journal"`
	Strict  bool       `yaml:"strict"`
	Log     LogConfig  `yaml:"log"`
	XRPL    XRPLConfig `yaml:"xrpl"`
	HTS     HTSConfig  `yaml:"hts"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	File  string `yaml:"file"`
}

type XRPLConfig struct {
	Account      string `yaml:"account"`
	NodeURL      string `yaml:"node_url"`
	Taxon        uint32 `yaml:"taxon"`
	Fee          uint64 `yaml:"fee"`
	LedgerOffset uint32 `yaml:"ledger_offset"`
}

type HTSConfig struct {
	OperatorID string  `yaml:"operator_id"`
	TokenID    string  `yaml:"token_id"`
	MirrorURL  string  `yaml:"mirror_url"`
	MaxFeeHbar float64 `yaml:"max_fee_hbar"`
	Memo       string  `yaml:"memo"`
}

// LoadFileConfig reads a YAML config file. When required is false a missing
// file yields the zero config.
func LoadFileConfig(path string, required bool) (FileConfig, error) {
	var config FileConfig

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return config, nil
}
