package r12

import (
	"fmt"
	"strings"
)

// asciiSpace is the whitespace set trimmed around responses.
const asciiSpace = " \t\n\r\v\f"

// trimSet is trimmed from both ends of a finished response.
const trimSet = asciiSpace + string(Prompt)

// FramingPolicy decides when accumulated controller output is a complete
// response. Complete is called with the whole decoded text read so far.
type FramingPolicy interface {
	Complete(text string) (terminator string, ok bool)
	Name() string
}

// Framing policy names accepted by ParseFramingPolicy.
const (
	FramingSentinel = "sentinel"
	FramingPrompt   = "prompt"
)

// SentinelWordPolicy completes when the text, with trailing whitespace and
// prompt characters removed, ends with one of the sentinel words. A nil
// Sentinels slice means DefaultSentinels.
type SentinelWordPolicy struct {
	Sentinels []string
}

func (p SentinelWordPolicy) Name() string { return FramingSentinel }

func (p SentinelWordPolicy) Complete(text string) (string, bool) {
	s := strings.TrimRight(text, trimSet)
	if s == "" {
		return "", false
	}
	sentinels := p.Sentinels
	if sentinels == nil {
		sentinels = DefaultSentinels
	}
	for _, w := range sentinels {
		if w != "" && strings.HasSuffix(s, w) {
			return w, true
		}
	}
	return "", false
}

// TrailingPromptPolicy completes when the last non-whitespace character is the
// controller prompt. A zero Prompt means '>'.
type TrailingPromptPolicy struct {
	Prompt byte
}

func (p TrailingPromptPolicy) Name() string { return FramingPrompt }

func (p TrailingPromptPolicy) Complete(text string) (string, bool) {
	prompt := p.Prompt
	if prompt == 0 {
		prompt = Prompt
	}
	s := strings.TrimRight(text, asciiSpace)
	if s == "" || s[len(s)-1] != prompt {
		return "", false
	}
	return string(prompt), true
}

// ParseFramingPolicy maps a configured name to a policy. The empty name selects
// the sentinel-word policy.
func ParseFramingPolicy(name string) (FramingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FramingSentinel, "sentinel-word":
		return SentinelWordPolicy{}, nil
	case FramingPrompt, "trailing-prompt":
		return TrailingPromptPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFramingPolicy, name)
	}
}
