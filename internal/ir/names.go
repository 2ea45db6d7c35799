package ir

import (
	"fmt"
	"strings"
	"unicode"
)

// CaseStyle selects which keys a decoder assigns.
type CaseStyle int

const (
	CaseBoth CaseStyle = iota
	CaseSnake
	CaseCamel
)

func (c CaseStyle) String() string {
	switch c {
	case CaseSnake:
		return "snake"
	case CaseCamel:
		return "camel"
	default:
		return "both"
	}
}

func ParseCaseStyle(s string) (CaseStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return CaseBoth, nil
	case "snake", "snake_case":
		return CaseSnake, nil
	case "camel", "camelcase":
		return CaseCamel, nil
	default:
		return 0, fmt.Errorf("unknown decode case %q (want snake, camel or both)", s)
	}
}

// CamelName upper-cases every lower-case letter that follows an
// underscore and drops the underscore.
func CamelName(protoName string) string {
	var b strings.Builder
	b.Grow(len(protoName))
	r := []rune(protoName)
	for i := 0; i < len(r); i++ {
		if r[i] == '_' && i+1 < len(r) && unicode.IsLower(r[i+1]) {
			b.WriteRune(unicode.ToUpper(r[i+1]))
			i++
			continue
		}
		b.WriteRune(r[i])
	}
	return b.String()
}

// EncodeKeys lists the keys tried, in order, when reading a field from a
// message object: declared name, declared JSON name, camelCase name and
// finally the alias, if any.
func EncodeKeys(field Field) []string {
	return dedupe(field.Name, field.JSONName, CamelName(field.Name), field.Alias)
}

// DecodeKeys lists the keys a decoder assigns for the given style.
func DecodeKeys(field Field, style CaseStyle) []string {
	switch style {
	case CaseSnake:
		return dedupe(field.Name)
	case CaseCamel:
		return dedupe(CamelName(field.Name))
	default:
		return dedupe(field.Name, CamelName(field.Name))
	}
}

func dedupe(keys ...string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == k {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, k)
		}
	}
	return out
}

// Identifier turns nested message name parts into a valid BrightScript
// identifier.
func Identifier(parts []string) string {
	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteByte('_')
		}
		for _, r := range part {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
				b.WriteRune(r)
				continue
			}
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out
}
