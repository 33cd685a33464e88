// Package health serves the liveness, readiness and version endpoints of the
// wiretap server.
//
// Liveness only says the process is up. Readiness runs every registered
// component check concurrently, each under its own timeout, and answers 503
// when any of them fails:
//
//	checker := health.New(2 * time.Second)
//	checker.Register("users_db", store.Ping)
//	health.Mount(router, checker, health.VersionInfo{Version: version})
package health
