package logsetup

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInit_ParsesValidLevel(t *testing.T) {
	os.Unsetenv(EnvLogLevel)
	Init("debug")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestInit_FallsBackToInfoOnGarbage(t *testing.T) {
	os.Unsetenv(EnvLogLevel)
	Init("not-a-real-level")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestInit_EnvOverridesConfiguredLevel(t *testing.T) {
	os.Setenv(EnvLogLevel, "warn")
	defer os.Unsetenv(EnvLogLevel)

	Init("debug")
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
}
