package reading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpreadSizes(t *testing.T) {
	tests := []struct {
		spread Spread
		size   int
	}{
		{SpreadDestiny, 3},
		{SpreadCruz, 4},
		{SpreadLove, 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.size, tt.spread.Size(), "spread %s", tt.spread)
		assert.True(t, tt.spread.Valid())
	}
}

func TestParseSpread(t *testing.T) {
	s, err := ParseSpread("Cruz")
	assert.NoError(t, err)
	assert.Equal(t, SpreadCruz, s)

	_, err = ParseSpread("Celtic")
	assert.Error(t, err)

	// 大小写敏感，与前端传参一致
	_, err = ParseSpread("destiny")
	assert.Error(t, err)
}

func TestUnknownSpreadSize(t *testing.T) {
	assert.Equal(t, 0, Spread("Celtic").Size())
	assert.False(t, Spread("").Valid())
}
