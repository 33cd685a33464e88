// Package scrub redacts sensitive argument values before they are logged.
//
// A value is scrubbed when scrubbing is enabled and its parameter name is
// either in the blacklist (compared lowercased) or fully matches the optional
// blacklist pattern (case-insensitive). The decision never looks at the value
// itself.
//
// Basic usage:
//
//	s := scrub.NewDefault()
//	v, scrubbed := s.Scrub("password", "hunter2") // "xxxxx", true
//
// A Scrubber may be reconfigured while it is in use; readers always observe a
// complete policy.
package scrub
