package policy

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePolicy = `rules:
  - name: one-commit
    description: Pull requests must contain a single commit
    expression: .commits length = 1
  - name: no-wip
    description: Titles must not be marked WIP
    expression: .title test "WIP" not
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(samplePolicy))
	require.NoError(t, err)
	require.Len(t, p.Rules, 2)
	assert.Equal(t, "one-commit", p.Rules[0].Name)
	assert.Equal(t, "Pull requests must contain a single commit", p.Rules[0].Description)
	assert.Equal(t, ".commits length = 1", p.Rules[0].Expression)
	assert.Equal(t, "no-wip", p.Rules[1].Name)
}

func TestParseEmpty(t *testing.T) {
	p, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, p.Rules)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("rules: [unclosed"))
	assert.Error(t, err)
}

func TestDecodeContent(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(samplePolicy))

	// The contents API wraps base64 output across lines.
	var wrapped string
	for i := 0; i < len(encoded); i += 60 {
		end := min(i+60, len(encoded))
		wrapped += encoded[i:end] + "\n"
	}

	data, err := DecodeContent(wrapped)
	require.NoError(t, err)
	assert.Equal(t, samplePolicy, string(data))

	p, err := Parse(data)
	require.NoError(t, err)
	assert.Len(t, p.Rules, 2)
}

func TestDecodeContentMalformed(t *testing.T) {
	_, err := DecodeContent("!!! not base64 !!!")
	assert.Error(t, err)
}
