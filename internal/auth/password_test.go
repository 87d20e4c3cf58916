package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugh/buildtrack/internal/auth"
)

func TestHashPassword(t *testing.T) {
	t.Run("produces a verifiable digest", func(t *testing.T) {
		hash, err := auth.HashPassword("Correct-Horse1!")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotContains(t, hash, "Correct-Horse1!")

		assert.True(t, auth.CheckPassword("Correct-Horse1!", hash))
		assert.False(t, auth.CheckPassword("wrong-password", hash))
	})

	t.Run("digests are salted", func(t *testing.T) {
		first, err := auth.HashPassword("Same-Password1!")
		require.NoError(t, err)
		second, err := auth.HashPassword("Same-Password1!")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("digest self-describes its parameters", func(t *testing.T) {
		hash, err := auth.HashPassword("Some-Password1!")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))
	})
}

func TestPasswordNeedsRehash(t *testing.T) {
	t.Run("current cost does not need rehash", func(t *testing.T) {
		hash, err := auth.HashPassword("Some-Password1!")
		require.NoError(t, err)
		assert.False(t, auth.PasswordNeedsRehash(hash))
	})

	t.Run("weaker legacy digest needs rehash", func(t *testing.T) {
		// bcrypt cost 10, below the current work factor
		legacy := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
		assert.True(t, auth.PasswordNeedsRehash(legacy))
	})

	t.Run("garbage digest needs rehash", func(t *testing.T) {
		assert.True(t, auth.PasswordNeedsRehash("not-a-bcrypt-hash"))
	})
}
