package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z80asm/macroasm-ls/config"
)

func TestLoadDefaults(t *testing.T) {
	p, err := config.Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), p)
}

func TestFromMapSection(t *testing.T) {
	p, err := config.FromMap(map[string]any{
		"z80-macroasm": map[string]any{
			"format": map[string]any{
				"baseIndent":        3,
				"uppercaseKeywords": true,
				"colonAfterLabels":  "false",
				"hexaNumberStyle":   "motorola",
				"hexaNumberCase":    "upper",
				"bracketType":       "square",
			},
			"seekSymbolsThroughWorkspace": true,
			"files": map[string]any{
				"include": []any{".ASM", "inc"},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, p.BaseIndent)
	assert.Equal(t, 1, p.ControlIndent)
	assert.Equal(t, config.On, p.UppercaseKeywords)
	assert.Equal(t, config.Off, p.ColonAfterLabels)
	assert.Equal(t, config.HexMotorola, p.HexaNumberStyle)
	assert.Equal(t, config.On, p.HexaNumberCase)
	assert.Equal(t, config.BracketSquare, p.BracketType)
	assert.True(t, p.SeekSymbolsThroughWorkspace)
	assert.Equal(t, []string{"asm", "inc"}, p.Files.Include)
}

func TestFromMapBareSection(t *testing.T) {
	p, err := config.FromMap(map[string]any{
		"indentSpaces": true,
		"indentSize":   4,
		"eol":          "crlf",
	})
	require.NoError(t, err)
	assert.True(t, p.IndentSpaces)
	assert.Equal(t, 4, p.IndentSize)
	assert.Equal(t, "\r\n", p.EOL)
}

func TestFromMapRejectsUnknownValues(t *testing.T) {
	_, err := config.FromMap(map[string]any{
		"format": map[string]any{"hexaNumberStyle": "roman"},
	})
	assert.ErrorContains(t, err, "hexaNumberStyle")

	_, err = config.FromMap(map[string]any{
		"format": map[string]any{"uppercaseKeywords": "sometimes"},
	})
	assert.Error(t, err)
}

func TestParseTristate(t *testing.T) {
	tests := []struct {
		in   any
		want config.Tristate
	}{
		{nil, config.Auto},
		{"auto", config.Auto},
		{"no-change", config.Auto},
		{true, config.On},
		{false, config.Off},
		{"TRUE", config.On},
		{"0", config.Off},
		{"lower", config.Off},
	}
	for _, tt := range tests {
		got, err := config.ParseTristate(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}

	_, err := config.ParseTristate(3)
	assert.Error(t, err)
}
