package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAllLimited_UnderLimitSucceeds(t *testing.T) {
	data, err := ReadAllLimited(strings.NewReader("hello"), 10)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestReadAllLimited_OverLimitErrors(t *testing.T) {
	_, err := ReadAllLimited(strings.NewReader("hello world"), 5)
	assert.Error(t, err)
}

func TestReadAllLimited_ZeroLimitIsUnbounded(t *testing.T) {
	big := strings.Repeat("x", 100000)
	data, err := ReadAllLimited(strings.NewReader(big), 0)
	require.NoError(t, err)
	assert.Len(t, data, 100000)
}
