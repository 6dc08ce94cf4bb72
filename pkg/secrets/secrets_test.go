package secrets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonasv2/sessionkit/pkg/secrets"
)

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()

	appKey, err := secrets.GenerateKey()
	require.NoError(t, err)
	require.Len(t, appKey, secrets.KeySize)

	scope := secrets.ScopeKey("tokenstore", "default")

	t.Run("bytes round trip", func(t *testing.T) {
		t.Parallel()

		sealed, err := secrets.EncryptBytes(appKey, scope, []byte(`{"access_token":"a"}`))
		require.NoError(t, err)
		assert.NotContains(t, string(sealed), "access_token")

		plain, err := secrets.DecryptBytes(appKey, scope, sealed)
		require.NoError(t, err)
		assert.Equal(t, `{"access_token":"a"}`, string(plain))
	})

	t.Run("string round trip", func(t *testing.T) {
		t.Parallel()

		sealed, err := secrets.EncryptString(appKey, scope, "hello")
		require.NoError(t, err)

		plain, err := secrets.DecryptString(appKey, scope, sealed)
		require.NoError(t, err)
		assert.Equal(t, "hello", plain)
	})

	t.Run("different scope cannot decrypt", func(t *testing.T) {
		t.Parallel()

		sealed, err := secrets.EncryptBytes(appKey, scope, []byte("data"))
		require.NoError(t, err)

		_, err = secrets.DecryptBytes(appKey, secrets.ScopeKey("tokenstore", "other"), sealed)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		t.Parallel()

		sealed, err := secrets.EncryptBytes(appKey, scope, []byte("data"))
		require.NoError(t, err)
		sealed[len(sealed)-1] ^= 0xff

		_, err = secrets.DecryptBytes(appKey, scope, sealed)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})

	t.Run("short ciphertext", func(t *testing.T) {
		t.Parallel()

		_, err := secrets.DecryptBytes(appKey, scope, []byte("short"))
		assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)
	})

	t.Run("invalid key sizes", func(t *testing.T) {
		t.Parallel()

		_, err := secrets.EncryptBytes([]byte("short"), scope, nil)
		assert.ErrorIs(t, err, secrets.ErrInvalidAppKey)

		_, err = secrets.EncryptBytes(appKey, []byte("short"), nil)
		assert.ErrorIs(t, err, secrets.ErrInvalidScopeKey)
	})
}
