package app

import "os"

const testModeEnv = "DENTALDESK_TEST_MODE"

// InTestMode reports whether the binaries were started by a test harness and
// should return before dialing Redis or the backend.
func InTestMode() bool {
	switch os.Getenv(testModeEnv) {
	case "1", "true":
		return true
	default:
		return false
	}
}
