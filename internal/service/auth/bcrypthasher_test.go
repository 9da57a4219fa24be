package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBcryptHasher(t *testing.T) {
	hasher := BcryptHasher{}

	t.Run("hash and compare", func(t *testing.T) {
		hash, err := hasher.Hash("correct horse battery staple")
		require.NoError(t, err)
		require.NotEmpty(t, hash)

		require.NoError(t, hasher.Compare(hash, "correct horse battery staple"))
		require.Error(t, hasher.Compare(hash, "wrong password"))
	})

	t.Run("long passwords supported", func(t *testing.T) {
		// Raw bcrypt rejects inputs over 72 bytes, the sha256 prehash must not
		long := strings.Repeat("a", 100)

		hash, err := hasher.Hash(long)
		require.NoError(t, err)
		require.NoError(t, hasher.Compare(hash, long))
	})

	t.Run("same password different hashes", func(t *testing.T) {
		first, err := hasher.Hash("password")
		require.NoError(t, err)
		second, err := hasher.Hash("password")
		require.NoError(t, err)

		require.NotEqual(t, first, second, "bcrypt salts must differ")
	})
}
