package testdb

import (
	"os"
	"testing"
)

// Environment variables consulted for the test database, in priority order.
const (
	EnvTestDatabaseURL = "FLASHBOX_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// ciVars are set by the common CI providers.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// IsCI reports whether the tests run under a CI provider.
func IsCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// DatabaseURL returns the first non-empty test database URL, or "".
func DatabaseURL() string {
	for _, v := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if url := os.Getenv(v); url != "" {
			return url
		}
	}
	return ""
}

// PostgresURL returns the test database URL. Without one the test is skipped,
// or failed when running in CI.
func PostgresURL(t testing.TB) string {
	t.Helper()

	url := DatabaseURL()
	if url != "" {
		return url
	}
	if IsCI() {
		t.Fatalf("%s or %s must be set in CI", EnvTestDatabaseURL, EnvDatabaseURL)
	}
	t.Skipf("%s not set; skipping PostgreSQL integration test", EnvTestDatabaseURL)
	return ""
}
