package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reMobileNoise = regexp.MustCompile(`[\s\-().]+`)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeMobile strips separators; a leading + is kept.
func NormalizeMobile(mobile string) string {
	return reMobileNoise.ReplaceAllString(strings.TrimSpace(mobile), "")
}

func NormalizeEmail(email string) string {
	return Pipeline{strings.TrimSpace, strings.ToLower}.Apply(email)
}

func NormalizeTag(tag string) string {
	return Pipeline{TrimAndNormalize, strings.ToLower}.Apply(tag)
}

// NormalizeTokens trims every token in place. Order and duplicates are kept:
// callers decide what a repeated token means.
func NormalizeTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = strings.TrimSpace(t)
	}
	return out
}
