package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platemart/platemart/pkg/jwt"
)

func TestJWT_CreateVerify(t *testing.T) {
	j := jwt.New([]byte("secret"))

	token, err := j.Create("UserID", "42")
	assert.NoError(t, err)

	value, ok, err := j.Verify(token, "UserID")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", value)
}

func TestJWT_VerifyWrongSecret(t *testing.T) {
	token, err := jwt.New([]byte("secret")).Create("UserID", "42")
	assert.NoError(t, err)

	_, ok, err := jwt.New([]byte("another")).Verify(token, "UserID")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestJWT_VerifyUnknownKey(t *testing.T) {
	j := jwt.New([]byte("secret"))

	token, err := j.Create("UserID", "42")
	assert.NoError(t, err)

	_, ok, err := j.Verify(token, "Role")
	assert.NoError(t, err)
	assert.False(t, ok)
}
