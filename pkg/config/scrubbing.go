package config

import "mercator-hq/wiretap/pkg/scrub"

// ScrubConfig converts the scrubbing section into a scrubber policy.
func (c ScrubbingConfig) ScrubConfig() scrub.Config {
	names := make([]string, len(c.BlacklistNames))
	copy(names, c.BlacklistNames)
	return scrub.Config{
		Enabled:          c.Enabled,
		Replacement:      c.Replacement,
		BlacklistPattern: c.BlacklistPattern,
		BlacklistNames:   names,
	}
}

// NewScrubber creates a scrubber from the scrubbing section.
func NewScrubber(c ScrubbingConfig) (*scrub.Scrubber, error) {
	return scrub.New(c.ScrubConfig())
}

// ApplyScrubbing replaces the policy of a live scrubber. In-flight calls
// keep the policy they started with.
func ApplyScrubbing(s *scrub.Scrubber, c ScrubbingConfig) error {
	return s.Configure(c.ScrubConfig())
}
