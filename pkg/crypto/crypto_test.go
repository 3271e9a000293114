package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	c, err := NewCipher("MySecretEncryptionKey!")
	require.NoError(t, err)

	enc, err := c.Encrypt("focused on the parser rewrite")
	require.NoError(t, err)
	assert.NotContains(t, enc, "parser")

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "focused on the parser rewrite", dec)
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	c, err := NewCipher("k")
	require.NoError(t, err)

	a, _ := c.Encrypt("same")
	b, _ := c.Encrypt("same")
	assert.NotEqual(t, a, b)
}

func TestDecryptRejectsTamperedInput(t *testing.T) {
	c, err := NewCipher("k")
	require.NoError(t, err)
	other, err := NewCipher("other")
	require.NoError(t, err)

	enc, err := c.Encrypt("note")
	require.NoError(t, err)

	_, err = other.Decrypt(enc)
	assert.Error(t, err)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString([]byte("abc")))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = c.Decrypt("%%%")
	assert.Error(t, err)
}

func TestNewCipherRequiresKey(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err)
}
