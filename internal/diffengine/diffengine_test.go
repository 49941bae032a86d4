package diffengine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"blockfold/internal/sink"
)

func buildSide(t *testing.T, rules ...string) *sink.BufferSink {
	t.Helper()
	buf := sink.NewBufferSink()
	for _, r := range rules {
		require.NoError(t, buf.WriteLine([]byte(r)))
	}
	return buf
}

func runDiff(t *testing.T, a, b *sink.BufferSink) []string {
	t.Helper()
	out := sink.NewBufferSink()
	require.NoError(t, Run(out, a, b))

	var lines []string
	for _, l := range out.Lines() {
		lines = append(lines, string(out.Slice(l)))
	}
	return lines
}

func TestDiff_ScenarioD_SuffixDomination(t *testing.T) {
	a := buildSide(t, "||ads.example.com^")
	b := buildSide(t, "||example.com^")

	got := runDiff(t, a, b)
	require.Equal(t, []string{" b||example.com^", "-a||ads.example.com^"}, got)
}

func TestDiff_ScenarioE_PureAddRemove(t *testing.T) {
	a := buildSide(t, "||alpha.com^", "||gamma.com^")
	b := buildSide(t, "||beta.com^", "||gamma.com^")

	got := runDiff(t, a, b)
	require.Equal(t, []string{
		"+a||alpha.com^",
		" b||beta.com^",
		"  ||gamma.com^",
	}, got)
}

func TestDiff_EmptySideEmitsOtherSideAsWinners(t *testing.T) {
	a := buildSide(t, "||alpha.com^", "||beta.com^")
	b := sink.NewBufferSink()

	got := runDiff(t, a, b)
	require.Equal(t, []string{"+a||alpha.com^", "+a||beta.com^"}, got)
}

func TestDiff_RepeatedDominationWritesWinnerOnce(t *testing.T) {
	// A's single short rule dominates two longer B rules in a row; A must
	// be written exactly once even though the blk comparison fires twice.
	a := buildSide(t, "||example.com^")
	b := buildSide(t, "||a.example.com^", "||b.example.com^")

	got := runDiff(t, a, b)
	require.Equal(t, []string{
		"+a||example.com^",
		"-b||a.example.com^",
		"-b||b.example.com^",
	}, got)
}
