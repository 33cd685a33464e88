// Wiretap serves HTTP and gRPC endpoints whose calls are logged by the
// wiretap interceptor: arguments before the call, elapsed time and result
// after it, and any error the call returns.
//
// Usage:
//
//	# Start the server with the configuration in ./wiretap.yaml
//	wiretap run
//
//	# Start with a custom configuration file
//	wiretap run --config /etc/wiretap/wiretap.yaml
//
//	# Check a configuration file
//	wiretap validate --config wiretap.yaml
//
//	# Show which parameter names would be redacted
//	wiretap scrub password username
//
//	# Show version information
//	wiretap version
package main

import "os"

func main() {
	os.Exit(Execute())
}
