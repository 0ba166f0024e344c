// Package testing prepares the process environment for package tests that
// import it for side effects. External services are pointed at unroutable
// addresses so a test can never reach a real backend or PDF renderer.
package testing

import (
	"os"
	"sync"
)

// Env lists the variables applied before any test runs. Values already set
// by the caller win.
var Env = map[string]string{
	"DENTALDESK_TEST_MODE": "1",
	"GOTENBERG_URL":        "http://127.0.0.1:0",
	"BACKEND_BASE_URL":     "http://127.0.0.1:0/api",
}

var apply = sync.OnceFunc(func() {
	for key, value := range Env {
		if key != "DENTALDESK_TEST_MODE" && os.Getenv(key) != "" {
			continue
		}
		_ = os.Setenv(key, value)
	}
})

func init() {
	apply()
}
