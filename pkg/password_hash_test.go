package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	passwordHash, err := HashPassword("coach-pass", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEmpty(t, passwordHash)
	assert.True(t, CheckPasswordHash("coach-pass", passwordHash))
	assert.False(t, CheckPasswordHash("coach-pass2", passwordHash))

	// hash produced with cost 14
	assert.True(t, CheckPasswordHash("testpass", "$2a$14$6Gmhg85si2etd3K9oB8nYu1cxfbrdmhkg6wI6OXsa88IF4L2r/L9i"))
	assert.False(t, CheckPasswordHash("testpass", "not-a-hash"))
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	passwordHash, err := HashPassword("x", 100)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(passwordHash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}
