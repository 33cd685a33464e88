// Package config provides configuration management for wiretap.
//
// Configuration is read from a YAML file, checked against an embedded JSON
// schema, decoded on top of the defaults and validated. Environment
// variables named WIRETAP_SECTION_FIELD take precedence over the file:
//
//   - WIRETAP_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - WIRETAP_LOGGING_LEVEL overrides logging.level
//   - WIRETAP_SCRUBBING_BLACKLIST_NAMES (comma separated) extends scrubbing.blacklist_names
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton
//
//	if err := config.Initialize("wiretap.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// # Hot Reload
//
// A Watcher reloads the file when it changes. The scrubbing section can be
// applied to a running scrubber with ApplyScrubbing:
//
//	w, _ := config.NewWatcher(path, cfg.Watch.Debounce, logger, func(c *config.Config) {
//	    _ = config.ApplyScrubbing(scrubber, c.Scrubbing)
//	})
//	go w.Watch(ctx)
package config
