package cryptox

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveMasterKey(password, salt)
	key2 := DeriveMasterKey(password, salt)

	assert.Len(t, key1, 32)
	assert.True(t, bytes.Equal(key1, key2))
}

func TestDeriveMasterKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")
	assert.NotEqual(t, DeriveMasterKey(password, []byte("salt-1")), DeriveMasterKey(password, []byte("salt-2")))
}

func TestNewSalt(t *testing.T) {
	a, err := NewSalt()
	require.NoError(t, err)
	b, err := NewSalt()
	require.NoError(t, err)
	assert.Len(t, a, SaltSize)
	assert.NotEqual(t, a, b)
}

func TestEncryptDecryptEntry(t *testing.T) {
	type draft struct {
		Name   string   `json:"name"`
		Skills []string `json:"skills"`
	}
	key := KeyFromSecret("k")
	in := draft{Name: "Jane", Skills: []string{"Go"}}

	ct, nonce, err := EncryptEntry(in, key)
	require.NoError(t, err)
	assert.Len(t, nonce, 12)
	assert.NotContains(t, string(ct), "Jane")

	var out draft
	require.NoError(t, DecryptEntry(ct, nonce, key, &out))
	assert.Equal(t, in, out)

	assert.Error(t, DecryptEntry(ct, nonce, KeyFromSecret("other"), &out))
}

func TestSealOpenString(t *testing.T) {
	key := KeyFromSecret("field-key")

	sealed, err := SealString("jane@x.com", key)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, SealedPrefix))
	assert.NotContains(t, sealed, "jane")

	again, err := SealString(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, sealed, again)

	plain, err := OpenString(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", plain)
}

func TestSealString_Empty(t *testing.T) {
	out, err := SealString("", KeyFromSecret("k"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOpenString_Plaintext(t *testing.T) {
	out, err := OpenString("Jane Doe", KeyFromSecret("k"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", out)
}

func TestOpenString_Errors(t *testing.T) {
	key := KeyFromSecret("k")

	_, err := OpenString("ENC:not-base64!", key)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = OpenString("ENC:AAAA", key)
	assert.ErrorIs(t, err, ErrMalformed)

	sealed, err := SealString("secret", key)
	require.NoError(t, err)
	_, err = OpenString(sealed, KeyFromSecret("wrong"))
	assert.Error(t, err)
}
