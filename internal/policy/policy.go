// Package policy models the per-repository rule document loaded from the
// repository itself at the pull request's head commit.
package policy

import (
	"encoding/base64"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Path is where the policy file lives inside a repository.
const Path = ".github/tailor.yaml"

// Rule is a named boolean expression over a pull request.
type Rule struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Expression  string `yaml:"expression"`
}

// Policy is the ordered rule list for a single repository.
type Policy struct {
	Rules []Rule `yaml:"rules"`
}

// Empty is the policy of a repository with no policy file.
func Empty() Policy {
	return Policy{}
}

// Parse decodes a YAML policy document.
func Parse(data []byte) (Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("decode policy: %w", err)
	}
	return p, nil
}

// DecodeContent decodes the base64 body of a contents-API response. The
// provider wraps the payload across lines, so line breaks are tolerated
// before standard-alphabet decoding.
func DecodeContent(content string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, content)
	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode policy content: %w", err)
	}
	return data, nil
}
