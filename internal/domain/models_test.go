package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestRealPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		discount *int
		expected int64
	}{
		{"no discount", 1000, nil, 1000},
		{"zero discount", 1000, intPtr(0), 1000},
		{"exact percentage", 1000, intPtr(10), 900},
		{"half discount rounds to even down", 130, intPtr(5), 124},
		{"half discount rounds to even up", 150, intPtr(5), 142},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Price: tt.price, Discount: tt.discount}
			assert.Equal(t, tt.expected, p.RealPrice())
		})
	}
}

func TestRoundHalfEven(t *testing.T) {
	tests := []struct {
		name     string
		n, d     int64
		expected int64
	}{
		{"exact division", 20000, 10000, 2},
		{"below half rounds down", 14999, 10000, 1},
		{"above half rounds up", 15001, 10000, 2},
		{"half rounds to even down", 5000, 10000, 0},
		{"one and a half rounds to two", 15000, 10000, 2},
		{"two and a half rounds to two", 25000, 10000, 2},
		{"three and a half rounds to four", 35000, 10000, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RoundHalfEven(tt.n, tt.d))
		})
	}
}
