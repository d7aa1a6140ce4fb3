package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/vitalvas/topn/spacesaving"
	"github.com/vitalvas/topn/xlogger"
)

var (
	ErrInvalidCapacity   = errors.New("capacity out of range")
	ErrInvalidPartitions = errors.New("partitions must be at least 1")
	ErrInvalidTopK       = errors.New("top_k must not be negative")
	ErrInvalidSeparator  = errors.New("invalid separator")
)

type Config struct {
	// Capacity is the number of counters each partition keeps.
	Capacity int `yaml:"capacity" json:"capacity"`

	Partitions int `yaml:"partitions" json:"partitions"`

	// TopK bounds the final result. Zero keeps every aggregated key.
	TopK int `yaml:"top_k" json:"top_k"`

	// Separator is the regular expression that splits input lines into keys.
	Separator string `yaml:"separator" json:"separator"`
	Lowercase bool   `yaml:"lowercase" json:"lowercase"`

	Inputs      []string `yaml:"inputs" json:"inputs"`
	Output      string   `yaml:"output" json:"output"`
	PartialsDir string   `yaml:"partials_dir" json:"partials_dir"`

	Logger xlogger.Config `yaml:"logger" json:"logger"`
}

func (c *Config) Default() {
	c.Capacity = 1000
	c.Partitions = 4
	c.TopK = 10
	c.Separator = `\s+`
	c.Logger = xlogger.Config{
		Level:   "info",
		LogType: "text",
	}
}

// Validate rejects settings the pipeline cannot run with. A capacity outside
// [1, spacesaving.MaxCapacity] is an error here even though the counting
// structure would clamp it.
func (c Config) Validate() error {
	if c.Capacity < 1 || c.Capacity > spacesaving.MaxCapacity {
		return fmt.Errorf("%w: got %d, want 1..%d", ErrInvalidCapacity, c.Capacity, spacesaving.MaxCapacity)
	}

	if c.Partitions < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPartitions, c.Partitions)
	}

	if c.TopK < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTopK, c.TopK)
	}

	if c.Separator == "" {
		return fmt.Errorf("%w: empty expression", ErrInvalidSeparator)
	}

	if _, err := regexp.Compile(c.Separator); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeparator, err)
	}

	return nil
}
