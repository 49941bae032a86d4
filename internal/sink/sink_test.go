package sink

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestFileSink_WriteLineAndIndex(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewFileSinkWriter(buf, nopCloser{buf})

	require.NoError(t, s.WriteLine([]byte("||example.com^")))
	require.NoError(t, s.WriteLine([]byte("||other.net^")))
	require.NoError(t, s.Close())

	assert.Equal(t, "||example.com^\n||other.net^\n", buf.String())

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, LiteLine{Offset: 0, Length: 14}, lines[0])
	assert.Equal(t, LiteLine{Offset: 15, Length: 12}, lines[1])
}

func TestBufferSink_WriteLineNullSeparated(t *testing.T) {
	s := NewBufferSink()
	require.NoError(t, s.WriteLine([]byte("a")))
	require.NoError(t, s.WriteLine([]byte("bb")))

	assert.Equal(t, []byte("a\x00bb\x00"), s.Bytes())

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a", string(s.Slice(lines[0])))
	assert.Equal(t, "bb", string(s.Slice(lines[1])))
}

func TestBufferSink_GrowsPastInitialCapacity(t *testing.T) {
	s := &BufferSink{bytes: make([]byte, 0, 2), lines: make([]LiteLine, 0, 1)}

	for i := 0; i < 5; i++ {
		require.NoError(t, s.WriteLine([]byte("payload")))
	}

	require.Len(t, s.Lines(), 5)
	for _, l := range s.Lines() {
		assert.Equal(t, "payload", string(s.Slice(l)))
	}
}
