package invariant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck_PassingConditionNeverReacts(t *testing.T) {
	Current = ModeFatal
	assert.NotPanics(t, func() { Check(true, "should never fire") })
}

func TestCheck_DisabledModeSkipsEntirely(t *testing.T) {
	Current = ModeDisabled
	defer func() { Current = ModeFatal }()
	assert.NotPanics(t, func() { Check(false, "ignored: %d", 1) })
}

func TestCheck_LogOnlyModeDoesNotAbort(t *testing.T) {
	Current = ModeLogOnly
	defer func() { Current = ModeFatal }()
	assert.NotPanics(t, func() { Check(false, "logged but survives: %d", 2) })
}
