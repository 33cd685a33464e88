// Package serialize renders argument and result values as JSON for log
// messages, with fallbacks for values that cannot be encoded: test doubles,
// file-like content and anything else the encoder rejects. Protobuf messages
// use their canonical JSON mapping.
package serialize
