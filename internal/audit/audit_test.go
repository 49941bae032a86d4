package audit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog_FallsBackToLogrusWhenUninitialized(t *testing.T) {
	assert.NotPanics(t, func() {
		Log(EventRunStarted, "info", "uninitialized fallback", nil)
	})
}

func TestLogRunFailed_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		LogRunFailed("dedupe", errors.New("boom"))
	})
}

func TestLogRuleDominated_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		LogRuleDominated("www.example.com", "example.com")
	})
}
