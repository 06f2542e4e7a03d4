package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPhoneNumber(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"79261234567", true},
		{"+79261234567", true},
		{"7926123456", false},
		{"+7926123456", false},
		{"792612345678", false},
		{"+7926123456a", false},
		{"7926123456a", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsPhoneNumber(tt.phone), tt.phone)
	}
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("Anna"))
	assert.True(t, IsName("Мария"))
	assert.False(t, IsName("Anna Maria"))
	assert.False(t, IsName("Anna1"))
	assert.False(t, IsName(""))
}

func TestIsCardNumber(t *testing.T) {
	assert.True(t, IsCardNumber("4561261212345467"))
	// 16 digits with a bad checksum still pass, only length and digits gate.
	assert.True(t, IsCardNumber("4561261212345464"))
	assert.False(t, IsCardNumber("456126121234546"))
	assert.False(t, IsCardNumber("4561261212345467a"))
	assert.False(t, IsCardNumber(""))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("user@example.com"))
	assert.False(t, IsEmail("user@"))
	assert.False(t, IsEmail(""))
}
