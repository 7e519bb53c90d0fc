package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Section is the settings namespace editors send under workspace/configuration.
const Section = "z80-macroasm"

// Tristate is a setting that is either forced on, forced off, or left to
// the source (auto or no-change depending on the option).
type Tristate int

const (
	Auto Tristate = iota
	On
	Off
)

func (t Tristate) String() string {
	switch t {
	case On:
		return "true"
	case Off:
		return "false"
	}
	return "auto"
}

const (
	WhitespaceAuto        = "auto"
	WhitespaceTab         = "tab"
	WhitespaceSingleSpace = "single-space"

	BracketRound    = "round"
	BracketSquare   = "square"
	BracketNoChange = "no-change"

	HexHash           = "hash"
	HexMotorola       = "motorola"
	HexIntel          = "intel"
	HexIntelUppercase = "intel-uppercase"
	HexCStyle         = "c-style"
	HexNoChange       = "no-change"
)

// Props is the configuration bag consumed by completion and formatting.
type Props struct {
	IndentSpaces bool
	IndentSize   int
	EOL          string

	BaseIndent                 int
	ControlIndent              int
	WhitespaceAfterInstruction string
	SpaceAfterArgument         bool
	SpaceAfterInstruction      bool
	UppercaseKeywords          Tristate
	BracketType                string
	ColonAfterLabels           Tristate
	HexaNumberStyle            string
	HexaNumberCase             Tristate
	SplitInstructionsByColon   bool
	FormatOnType               bool

	SeekSymbolsThroughWorkspace bool

	Files Files
}

type Files struct {
	Include []string // extensions without the dot
	Exclude []string // gitignore style patterns
}

const (
	keyIndentSpaces               = "indentSpaces"
	keyIndentSize                 = "indentSize"
	keyEOL                        = "eol"
	keyBaseIndent                 = "format.baseIndent"
	keyControlIndent              = "format.controlIndent"
	keyWhitespaceAfterInstruction = "format.whitespaceAfterInstruction"
	keySpaceAfterArgument         = "format.spaceAfterArgument"
	keySpaceAfterInstruction      = "format.spaceAfterInstruction"
	keyUppercaseKeywords          = "format.uppercaseKeywords"
	keyBracketType                = "format.bracketType"
	keyColonAfterLabels           = "format.colonAfterLabels"
	keyHexaNumberStyle            = "format.hexaNumberStyle"
	keyHexaNumberCase             = "format.hexaNumberCase"
	keySplitInstructionsByColon   = "format.splitInstructionsByColon"
	keyFormatOnType               = "format.onType"
	keySeekSymbols                = "seekSymbolsThroughWorkspace"
	keyFilesInclude               = "files.include"
	keyFilesExclude               = "files.exclude"
)

// Defaults returns the settings used when nothing is configured.
func Defaults() Props {
	return Props{
		IndentSpaces:               false,
		IndentSize:                 8,
		EOL:                        "\n",
		BaseIndent:                 2,
		ControlIndent:              1,
		WhitespaceAfterInstruction: WhitespaceAuto,
		SpaceAfterArgument:         false,
		SpaceAfterInstruction:      true,
		UppercaseKeywords:          Auto,
		BracketType:                BracketNoChange,
		ColonAfterLabels:           Auto,
		HexaNumberStyle:            HexNoChange,
		HexaNumberCase:             Auto,
		SplitInstructionsByColon:   true,
		FormatOnType:               false,
		Files: Files{
			Include: []string{"a80", "asm", "inc", "s"},
			Exclude: []string{},
		},
	}
}

// SetDefaults registers every key on v so lookups and env binding see them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(keyIndentSpaces, d.IndentSpaces)
	v.SetDefault(keyIndentSize, d.IndentSize)
	v.SetDefault(keyEOL, "lf")
	v.SetDefault(keyBaseIndent, d.BaseIndent)
	v.SetDefault(keyControlIndent, d.ControlIndent)
	v.SetDefault(keyWhitespaceAfterInstruction, d.WhitespaceAfterInstruction)
	v.SetDefault(keySpaceAfterArgument, d.SpaceAfterArgument)
	v.SetDefault(keySpaceAfterInstruction, d.SpaceAfterInstruction)
	v.SetDefault(keyUppercaseKeywords, "auto")
	v.SetDefault(keyBracketType, d.BracketType)
	v.SetDefault(keyColonAfterLabels, "no-change")
	v.SetDefault(keyHexaNumberStyle, d.HexaNumberStyle)
	v.SetDefault(keyHexaNumberCase, "no-change")
	v.SetDefault(keySplitInstructionsByColon, d.SplitInstructionsByColon)
	v.SetDefault(keyFormatOnType, d.FormatOnType)
	v.SetDefault(keySeekSymbols, d.SeekSymbolsThroughWorkspace)
	v.SetDefault(keyFilesInclude, d.Files.Include)
	v.SetDefault(keyFilesExclude, d.Files.Exclude)
}

// Load reads Props from v. Unset keys fall back to Defaults.
func Load(v *viper.Viper) (Props, error) {
	SetDefaults(v)

	p := Props{
		IndentSpaces:                v.GetBool(keyIndentSpaces),
		IndentSize:                  v.GetInt(keyIndentSize),
		BaseIndent:                  v.GetInt(keyBaseIndent),
		ControlIndent:               v.GetInt(keyControlIndent),
		SpaceAfterArgument:          v.GetBool(keySpaceAfterArgument),
		SpaceAfterInstruction:       v.GetBool(keySpaceAfterInstruction),
		SplitInstructionsByColon:    v.GetBool(keySplitInstructionsByColon),
		FormatOnType:                v.GetBool(keyFormatOnType),
		SeekSymbolsThroughWorkspace: v.GetBool(keySeekSymbols),
		Files: Files{
			Include: normalizeExtensions(v.GetStringSlice(keyFilesInclude)),
			Exclude: v.GetStringSlice(keyFilesExclude),
		},
	}
	if p.IndentSize <= 0 {
		p.IndentSize = 8
	}

	var err error
	if p.EOL, err = parseEOL(v.GetString(keyEOL)); err != nil {
		return Props{}, err
	}
	if p.WhitespaceAfterInstruction, err = oneOf(v, keyWhitespaceAfterInstruction,
		WhitespaceAuto, WhitespaceTab, WhitespaceSingleSpace); err != nil {
		return Props{}, err
	}
	if p.BracketType, err = oneOf(v, keyBracketType,
		BracketRound, BracketSquare, BracketNoChange); err != nil {
		return Props{}, err
	}
	if p.HexaNumberStyle, err = oneOf(v, keyHexaNumberStyle,
		HexHash, HexMotorola, HexIntel, HexIntelUppercase, HexCStyle, HexNoChange); err != nil {
		return Props{}, err
	}
	if p.UppercaseKeywords, err = ParseTristate(v.Get(keyUppercaseKeywords)); err != nil {
		return Props{}, fmt.Errorf("config: %s: %w", keyUppercaseKeywords, err)
	}
	if p.ColonAfterLabels, err = ParseTristate(v.Get(keyColonAfterLabels)); err != nil {
		return Props{}, fmt.Errorf("config: %s: %w", keyColonAfterLabels, err)
	}
	if p.HexaNumberCase, err = ParseTristate(v.Get(keyHexaNumberCase)); err != nil {
		return Props{}, fmt.Errorf("config: %s: %w", keyHexaNumberCase, err)
	}
	return p, nil
}

// FromMap loads Props from a settings payload as sent by an editor, either
// the bare section or an object wrapping it under Section.
func FromMap(settings map[string]any) (Props, error) {
	v := viper.New()
	if err := v.MergeConfigMap(settings); err != nil {
		return Props{}, fmt.Errorf("config: %w", err)
	}
	if sub := v.Sub(Section); sub != nil {
		v = sub
	}
	return Load(v)
}

// ParseTristate accepts JSON booleans as well as the string spellings
// auto, no-change, true, false, upper and lower.
func ParseTristate(raw any) (Tristate, error) {
	switch val := raw.(type) {
	case nil:
		return Auto, nil
	case bool:
		if val {
			return On, nil
		}
		return Off, nil
	case string:
		switch s := strings.ToLower(strings.TrimSpace(val)); s {
		case "", "auto", "no-change":
			return Auto, nil
		case "upper", "uppercase":
			return On, nil
		case "lower", "lowercase":
			return Off, nil
		default:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return Auto, fmt.Errorf("invalid value %q", val)
			}
			if b {
				return On, nil
			}
			return Off, nil
		}
	}
	return Auto, fmt.Errorf("invalid value %v", raw)
}

func oneOf(v *viper.Viper, key string, allowed ...string) (string, error) {
	val := strings.ToLower(v.GetString(key))
	for _, a := range allowed {
		if val == a {
			return val, nil
		}
	}
	return "", fmt.Errorf("config: %s: invalid value %q", key, val)
}

func parseEOL(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", "lf", "\n", "auto":
		return "\n", nil
	case "crlf", "\r\n":
		return "\r\n", nil
	}
	return "", fmt.Errorf("config: %s: invalid value %q", keyEOL, s)
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e != "" {
			out = append(out, strings.ToLower(e))
		}
	}
	return out
}
