package codes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platemart/platemart/pkg/codes"
)

func TestOrderCode(t *testing.T) {
	code := codes.OrderCode("9a4f2c1e-0000-0000-0000-000000000001", "tok_visa")

	assert.Len(t, code, 64)
	assert.Equal(t, code, codes.OrderCode("9a4f2c1e-0000-0000-0000-000000000001", "tok_visa"))
	assert.NotEqual(t, code, codes.OrderCode("9a4f2c1e-0000-0000-0000-000000000002", "tok_visa"))
	assert.NotEqual(t, code, codes.OrderCode("9a4f2c1e-0000-0000-0000-000000000001", "tok_mastercard"))
}

func TestResetCode(t *testing.T) {
	code := codes.ResetCode("7", "user@example.com")

	assert.Len(t, code, 64)
	assert.Equal(t, code, codes.ResetCode("7", "user@example.com"))
	assert.NotEqual(t, code, codes.ResetCode("8", "user@example.com"))
}

func TestHashPassword(t *testing.T) {
	hash, err := codes.HashPassword("pass")
	assert.NoError(t, err)
	assert.Len(t, hash, 128)

	saltHash, verifier := codes.SplitHash(hash)
	assert.Len(t, saltHash, 64)
	assert.Len(t, verifier, 64)

	again, err := codes.HashPassword("pass")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, again, "salts must differ between hashes")
}

func TestCheckPassword(t *testing.T) {
	hash, err := codes.HashPassword("pass")
	assert.NoError(t, err)

	tests := []struct {
		name     string
		password string
		stored   string
		want     bool
	}{
		{
			name:     "correct",
			password: "pass",
			stored:   hash,
			want:     true,
		},
		{
			name:     "wrong password",
			password: "other",
			stored:   hash,
			want:     false,
		},
		{
			name:     "malformed stored hash",
			password: "pass",
			stored:   "short",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes.CheckPassword(tt.password, tt.stored))
		})
	}
}
