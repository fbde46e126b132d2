package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffset(t *testing.T) {
	tests := []struct {
		page, limit, want int
	}{
		{1, 20, 0},
		{3, 10, 20},
		{0, 10, 0},
		{-4, 10, 0},
		{MaxPage, 100, (MaxPage - 1) * 100},
		{math.MaxInt, 100, (MaxPage - 1) * 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Offset(tt.page, tt.limit), "page=%d limit=%d", tt.page, tt.limit)
	}
}
