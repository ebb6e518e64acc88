// Package testing forces test mode for packages that import it blank.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

var testDefaults = map[string]string{
	"GOTENBERG_URL":   "http://127.0.0.1:0",
	"SESSION_SECRET":  "test-session-secret",
	"CSRF_SECRET":     "test-csrf-secret",
	"CATALOG_API_URL": "http://127.0.0.1:0/api/v1",
}

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("NORTHWIND_TEST_MODE", "1")
		for key, value := range testDefaults {
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
