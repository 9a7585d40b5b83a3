package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSuffix(t *testing.T) {
	tests := []struct {
		shortID string
		want    int64
	}{
		{"MM1", 1},
		{"MM482", 482},
		{"MM99999", 99999},
		{"MM1000000482", 1000000482},
	}

	for _, tt := range tests {
		got, err := ExtractSuffix(tt.shortID)
		require.NoError(t, err, "shortID %s", tt.shortID)
		assert.Equal(t, tt.want, got)
	}
}

func TestExtractSuffixRejectsMalformed(t *testing.T) {
	for _, shortID := range []string{"", "MM", "482", "XX482", "MMabc", "MM48a2"} {
		_, err := ExtractSuffix(shortID)
		assert.Error(t, err, "shortID %q", shortID)
	}
}

func TestRandomLargeSequenceRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := randomLargeSequence()
		assert.GreaterOrEqual(t, v, int64(1_000_000_000))
		assert.Less(t, v, int64(2_000_000_000))
	}
}
