package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// Tokenizer splits input lines into grouping keys.
type Tokenizer struct {
	separator *regexp.Regexp
	lowercase bool
}

func NewTokenizer(separator string, lowercase bool) (*Tokenizer, error) {
	re, err := regexp.Compile(separator)
	if err != nil {
		return nil, fmt.Errorf("invalid separator %q: %w", separator, err)
	}

	return &Tokenizer{
		separator: re,
		lowercase: lowercase,
	}, nil
}

// Split returns the non-empty tokens of line.
func (t *Tokenizer) Split(line string) []string {
	parts := t.separator.Split(line, -1)

	tokens := parts[:0]
	for _, part := range parts {
		if part == "" {
			continue
		}
		if t.lowercase {
			part = strings.ToLower(part)
		}
		tokens = append(tokens, part)
	}

	return tokens
}
