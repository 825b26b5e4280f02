// Package policy decides which calling origins may reach the API at all.
// It knows nothing about identity; token checks live in the auth middleware.
package policy

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrOriginNotAllowed = errors.New("origin not allowed")

type OriginPolicy struct {
	allowed  map[string]struct{}
	patterns []*regexp.Regexp
}

// NewOriginPolicy builds a policy from an exact allow-list and a list of
// trusted origin patterns. Patterns must match the whole origin.
func NewOriginPolicy(allowedOrigins, trustedPatterns []string) (*OriginPolicy, error) {
	p := &OriginPolicy{
		allowed: make(map[string]struct{}, len(allowedOrigins)),
	}

	for _, origin := range allowedOrigins {
		trimmed := strings.TrimRight(strings.TrimSpace(origin), "/")
		if trimmed == "" {
			continue
		}
		p.allowed[trimmed] = struct{}{}
	}

	for _, pattern := range trustedPatterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		pattern = strings.TrimSuffix(strings.TrimPrefix(pattern, "^"), "$")
		re, err := regexp.Compile(`^(?:` + pattern + `)$`)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted origin pattern %q: %w", pattern, err)
		}
		p.patterns = append(p.patterns, re)
	}

	return p, nil
}

// Admit reports whether a request claiming origin may proceed. An empty
// origin comes from a non-browser caller and is admitted.
func (p *OriginPolicy) Admit(origin string) bool {
	if origin == "" {
		return true
	}
	if _, ok := p.allowed[origin]; ok {
		return true
	}
	for _, re := range p.patterns {
		if re.MatchString(origin) {
			return true
		}
	}
	return false
}

// Check is Admit expressed as an error.
func (p *OriginPolicy) Check(origin string) error {
	if p.Admit(origin) {
		return nil
	}
	return ErrOriginNotAllowed
}
