package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInTestMode(t *testing.T) {
	for value, want := range map[string]bool{"": false, "0": false, "1": true, "true": true} {
		t.Setenv(testModeEnv, value)
		assert.Equal(t, want, InTestMode(), "value %q", value)
	}
}
