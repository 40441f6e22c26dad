// Package config carries the driver's defaults and their YAML overlay.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"xdao.co/ionhash/resource"
)

const (
	// ResultsFileDefault is the report filename under the output directory.
	ResultsFileDefault = "ion-test-driver-results.ion"
	// CorpusSourceDefault is where the seed corpus repository lives.
	CorpusSourceDefault = "https://github.com/amzn/ion-hash-test.git"
	// CorpusResourceName names the corpus checkout under build/.
	CorpusResourceName = "ion-hash-test"
	// AlgorithmDefault is the hash algorithm used when none is requested.
	AlgorithmDefault = "md5"
)

// Config is the driver configuration. Zero or more fields may be
// overridden from a YAML file; everything else keeps its default.
type Config struct {
	// Tools maps required external tools to executable paths.
	Tools resource.Tools `yaml:"tools"`
	// Builds maps implementation names to their build recipes. An
	// implementation without a recipe here cannot be installed.
	Builds map[string]resource.Build `yaml:"builds"`
	// Implementations are the descriptors tested by default.
	Implementations []string `yaml:"implementations"`
	// CorpusSource locates the seed corpus repository.
	CorpusSource string `yaml:"corpus_source"`
	// ResultsFile is the report path, relative to the output directory
	// unless absolute.
	ResultsFile string `yaml:"results_file"`
	// Algorithm is the hash algorithm passed to every implementation.
	Algorithm string `yaml:"algorithm"`
}

// Default returns the stock configuration: the three reference
// implementations, their build recipes, and the public corpus repository.
func Default() Config {
	return Config{
		Tools: resource.DefaultTools(),
		Builds: map[string]resource.Build{
			"ion-hash-java": {
				Steps:      [][]string{{"mvn", "install", "-DskipTests"}},
				Executable: "tools/cli/ion-hash",
			},
			"ion-hash-js": {
				Steps:      [][]string{{"npm", "install"}, {"npm", "run", "grunt"}},
				Executable: "tools/cli/ion-hash",
			},
			"ion-hash-python": {
				Executable: "tools/cli/ion-hash-wrapper",
			},
		},
		Implementations: []string{
			"ion-hash-java,https://github.com/amzn/ion-hash-java.git",
			"ion-hash-js,https://github.com/amzn/ion-hash-js.git",
			"ion-hash-python,https://github.com/amzn/ion-hash-python.git",
		},
		CorpusSource: CorpusSourceDefault,
		ResultsFile:  ResultsFileDefault,
		Algorithm:    AlgorithmDefault,
	}
}

// Load reads a YAML overlay from path on top of the defaults. Fields the
// file does not mention keep their default values; maps are replaced
// per-key, not wholesale.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var overlay struct {
		Tools           map[string]string         `yaml:"tools"`
		Builds          map[string]resource.Build `yaml:"builds"`
		Implementations []string                  `yaml:"implementations"`
		CorpusSource    string                    `yaml:"corpus_source"`
		ResultsFile     string                    `yaml:"results_file"`
		Algorithm       string                    `yaml:"algorithm"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	for name, exe := range overlay.Tools {
		cfg.Tools[name] = exe
	}
	for name, build := range overlay.Builds {
		cfg.Builds[name] = build
	}
	if overlay.Implementations != nil {
		cfg.Implementations = overlay.Implementations
	}
	if overlay.CorpusSource != "" {
		cfg.CorpusSource = overlay.CorpusSource
	}
	if overlay.ResultsFile != "" {
		cfg.ResultsFile = overlay.ResultsFile
	}
	if overlay.Algorithm != "" {
		cfg.Algorithm = overlay.Algorithm
	}
	return cfg, nil
}
