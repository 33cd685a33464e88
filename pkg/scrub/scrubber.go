package scrub

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultReplacement is the value logged in place of a scrubbed argument.
const DefaultReplacement = "xxxxx"

// DefaultBlacklist lists the parameter names that are always scrubbed.
var DefaultBlacklist = []string{
	"password",
	"passwd",
	"secret",
	"authorization",
	"api_key",
	"apikey",
	"access_token",
	"accesstoken",
}

// Config describes a scrubbing policy.
type Config struct {
	// Enabled turns scrubbing on or off.
	Enabled bool

	// Replacement is logged instead of a scrubbed value.
	Replacement string

	// BlacklistPattern is an optional regular expression. A parameter whose
	// whole name matches it (case-insensitively) is scrubbed.
	BlacklistPattern string

	// BlacklistNames are merged into DefaultBlacklist.
	BlacklistNames []string
}

// DefaultConfig returns the policy used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		Replacement: DefaultReplacement,
	}
}

// snapshot is an immutable, compiled Config.
type snapshot struct {
	enabled     bool
	replacement string
	names       map[string]struct{}
	pattern     *regexp.Regexp
	patternSrc  string
}

// Scrubber redacts argument values by parameter name.
//
// Reads go through an atomically swapped snapshot and never take a lock, so
// concurrent invocations do not contend with each other. Configuration calls
// build a new snapshot and publish it; they are serialized among themselves.
type Scrubber struct {
	current atomic.Pointer[snapshot]
	mu      sync.Mutex
}

// New creates a Scrubber with the given policy.
func New(cfg Config) (*Scrubber, error) {
	s := &Scrubber{}
	if err := s.Configure(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// NewDefault creates a Scrubber with DefaultConfig.
func NewDefault() *Scrubber {
	s, err := New(DefaultConfig())
	if err != nil {
		// DefaultConfig carries no pattern, so compiling cannot fail.
		panic(err)
	}
	return s
}

// Scrub returns the replacement string and true when the parameter name is
// blacklisted and scrubbing is enabled; otherwise it returns value unchanged
// and false. The decision depends on the name only.
func (s *Scrubber) Scrub(name string, value any) (any, bool) {
	snap := s.current.Load()
	if snap == nil || !snap.enabled {
		return value, false
	}

	if !snap.matches(name) {
		return value, false
	}

	return snap.replacement, true
}

// IsBlacklisted reports whether name would be scrubbed under the current
// policy, ignoring the enabled flag.
func (s *Scrubber) IsBlacklisted(name string) bool {
	snap := s.current.Load()
	return snap != nil && snap.matches(name)
}

// Configure replaces the whole policy. BlacklistNames are merged into the
// default set. An empty Replacement falls back to DefaultReplacement.
func (s *Scrubber) Configure(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := compile(cfg)
	if err != nil {
		return err
	}
	s.current.Store(snap)
	return nil
}

// SetEnabled turns scrubbing on or off.
func (s *Scrubber) SetEnabled(enabled bool) {
	s.update(func(next *snapshot) error {
		next.enabled = enabled
		return nil
	})
}

// SetReplacement changes the value logged for scrubbed arguments.
func (s *Scrubber) SetReplacement(replacement string) {
	s.update(func(next *snapshot) error {
		next.replacement = replacement
		return nil
	})
}

// SetBlacklistPattern sets the additional name pattern. An empty pattern
// clears it. The previous policy stays active when the pattern is invalid.
func (s *Scrubber) SetBlacklistPattern(pattern string) error {
	return s.update(func(next *snapshot) error {
		re, err := compilePattern(pattern)
		if err != nil {
			return err
		}
		next.pattern = re
		next.patternSrc = pattern
		return nil
	})
}

// AddBlacklistNames merges names into the blacklist.
func (s *Scrubber) AddBlacklistNames(names ...string) {
	s.update(func(next *snapshot) error {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				next.names[strings.ToLower(n)] = struct{}{}
			}
		}
		return nil
	})
}

// Snapshot returns the policy currently in effect. BlacklistNames holds the
// full, sorted name set including defaults.
func (s *Scrubber) Snapshot() Config {
	snap := s.current.Load()
	if snap == nil {
		return Config{}
	}

	names := make([]string, 0, len(snap.names))
	for n := range snap.names {
		names = append(names, n)
	}
	sort.Strings(names)

	return Config{
		Enabled:          snap.enabled,
		Replacement:      snap.replacement,
		BlacklistPattern: snap.patternSrc,
		BlacklistNames:   names,
	}
}

// update copies the current snapshot, applies fn and publishes the result.
func (s *Scrubber) update(fn func(next *snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Load().clone()
	if err := fn(next); err != nil {
		return err
	}
	s.current.Store(next)
	return nil
}

func (sn *snapshot) matches(name string) bool {
	if _, ok := sn.names[strings.ToLower(name)]; ok {
		return true
	}
	return sn.pattern != nil && sn.pattern.MatchString(name)
}

func (sn *snapshot) clone() *snapshot {
	if sn == nil {
		snap, _ := compile(DefaultConfig())
		return snap
	}
	names := make(map[string]struct{}, len(sn.names))
	for n := range sn.names {
		names[n] = struct{}{}
	}
	return &snapshot{
		enabled:     sn.enabled,
		replacement: sn.replacement,
		names:       names,
		pattern:     sn.pattern,
		patternSrc:  sn.patternSrc,
	}
}

func compile(cfg Config) (*snapshot, error) {
	re, err := compilePattern(cfg.BlacklistPattern)
	if err != nil {
		return nil, err
	}

	names := make(map[string]struct{}, len(DefaultBlacklist)+len(cfg.BlacklistNames))
	for _, n := range DefaultBlacklist {
		names[n] = struct{}{}
	}
	for _, n := range cfg.BlacklistNames {
		if n = strings.TrimSpace(n); n != "" {
			names[strings.ToLower(n)] = struct{}{}
		}
	}

	replacement := cfg.Replacement
	if replacement == "" {
		replacement = DefaultReplacement
	}

	return &snapshot{
		enabled:     cfg.Enabled,
		replacement: replacement,
		names:       names,
		pattern:     re,
		patternSrc:  cfg.BlacklistPattern,
	}, nil
}

// compilePattern anchors pattern to the whole name and makes it
// case-insensitive.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile("(?i)^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid blacklist pattern %q: %w", pattern, err)
	}
	return re, nil
}
