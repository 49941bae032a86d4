package domainview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		wantErr bool
	}{
		{"valid two labels", "example.com", false},
		{"valid three labels", "www.example.com", false},
		{"single label rejected", "localhost", true},
		{"empty rejected", "", true},
		{"label too long rejected", string(make([]byte, 64)) + ".com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.domain))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestView_IterationIsTLDFirst(t *testing.T) {
	v, err := Parse([]byte("www.example.com"))
	require.NoError(t, err)

	it := v.Iterate()
	var got []string
	for {
		l, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, string(l))
	}
	assert.Equal(t, []string{"com", "example", "www"}, got)
	assert.Equal(t, "com", string(v.TLD()))
}

func TestCompare(t *testing.T) {
	mk := func(s string) *View {
		v, err := Parse([]byte(s))
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		name string
		a, b string
		want Result
	}{
		{"equal", "example.com", "example.com", Equal},
		{"a less than b lexicographically", "a.com", "z.com", Less},
		{"b less than a lexicographically", "z.com", "a.com", Greater},
		{"a is suffix of b", "example.com", "ads.example.com", ASuffixOfB},
		{"b is suffix of a", "ads.example.com", "example.com", BSuffixOfA},
		{"different tld", "a.net", "a.com", Greater},
		{"same tld different second label", "a.com", "z.com", Less},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(mk(tt.a), mk(tt.b))
			assert.Equal(t, tt.want, got)
		})
	}
}
