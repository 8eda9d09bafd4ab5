package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dusk-indust/hunkctx/internal/enclosing"
	"github.com/dusk-indust/hunkctx/internal/review"
	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from hunkctx.yml.
type ProjectConfig struct {
	Model         string         `yaml:"model,omitempty"`
	Languages     []string       `yaml:"languages,omitempty"`
	Selection     string         `yaml:"selection,omitempty"`
	PromptFormat  string         `yaml:"promptFormat,omitempty"`
	TokenLimits   map[string]int `yaml:"tokenLimits,omitempty"`
	CharsPerToken int            `yaml:"charsPerToken,omitempty"`
	Concurrency   int            `yaml:"concurrency,omitempty"`
	Verbose       bool           `yaml:"verbose,omitempty"`

	// Exclude lists doublestar globs (e.g. "**/*.lock") of files left out of
	// review prompts.
	Exclude []string `yaml:"exclude,omitempty"`
}

// Load attempts to read hunkctx.yml or hunkctx.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"hunkctx.yml", "hunkctx.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		for _, pattern := range cfg.Exclude {
			if !doublestar.ValidatePattern(pattern) {
				return nil, fmt.Errorf("parse %s: invalid exclude pattern %q", path, pattern)
			}
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// Registry builds the resolver registry described by the config.
func (c *ProjectConfig) Registry(opts ...enclosing.Option) (*enclosing.Registry, error) {
	sel, ok := enclosing.ParseSelection(c.Selection)
	if !ok {
		return nil, fmt.Errorf("unknown selection %q (want outermost or innermost)", c.Selection)
	}
	opts = append([]enclosing.Option{enclosing.WithSelection(sel)}, opts...)

	langs := make([]enclosing.Language, len(c.Languages))
	for i, l := range c.Languages {
		langs[i] = enclosing.Language(l)
	}
	return enclosing.NewRegistry(opts...).Restrict(langs)
}

// BuilderConfig translates the config into review builder settings.
func (c *ProjectConfig) BuilderConfig() (review.BuilderConfig, error) {
	convo, ok := review.ConvoBuilderFor(c.PromptFormat)
	if !ok {
		return review.BuilderConfig{}, fmt.Errorf("unknown prompt format %q (want review or xml)", c.PromptFormat)
	}
	var counter review.TokenCounter
	if c.CharsPerToken > 0 {
		counter = review.NewCharacterCounter(c.CharsPerToken)
	}
	return review.BuilderConfig{
		Model:       c.Model,
		Convo:       convo,
		Concurrency: c.Concurrency,
		Budget:      review.NewBudget(counter, c.TokenLimits),
	}, nil
}

// Excluded reports whether path matches one of the exclude patterns.
func (c *ProjectConfig) Excluded(path string) bool {
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
