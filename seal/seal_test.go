package seal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func TestSealOpen(t *testing.T) {
	key, err := ParseKey(testKey)
	require.NoError(t, err)

	for _, msg := range []string{"", "hi", `{"certId":"c-1","serial":"A/001"}`, "こんにちは"} {
		sealed, err := Seal(key, []byte(msg))
		require.NoError(t, err)
		assert.True(t, IsSealed(sealed))
		assert.Len(t, strings.Split(sealed, ":"), 3)

		got, err := Open(key, sealed)
		require.NoError(t, err)
		assert.Equal(t, msg, string(got))
	}

	t.Run("random iv", func(t *testing.T) {
		a, err := Seal(key, []byte("same"))
		require.NoError(t, err)
		b, err := Seal(key, []byte("same"))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestOpenErrors(t *testing.T) {
	key, err := ParseKey(testKey)
	require.NoError(t, err)
	sealed, err := Seal(key, []byte("secret"))
	require.NoError(t, err)

	t.Run("tampered", func(t *testing.T) {
		parts := strings.Split(sealed, ":")
		c := []byte(parts[2])
		if c[0] == '0' {
			c[0] = '1'
		} else {
			c[0] = '0'
		}
		_, err := Open(key, parts[0]+":"+parts[1]+":"+string(c))
		assert.ErrorIs(t, err, ErrAuthentication)
	})
	t.Run("wrong key", func(t *testing.T) {
		other, err := ParseKey(strings.Repeat("b", 64))
		require.NoError(t, err)
		_, err = Open(other, sealed)
		assert.ErrorIs(t, err, ErrAuthentication)
	})
	t.Run("malformed", func(t *testing.T) {
		for _, s := range []string{"plain text", "a:b", "zz:zz:zz", "00:00:00"} {
			_, err := Open(key, s)
			assert.ErrorIs(t, err, ErrMalformed, s)
			assert.False(t, IsSealed(s), s)
		}
	})
}

func TestParseKey(t *testing.T) {
	_, err := ParseKey("abc")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = ParseKey(strings.Repeat("a", 62))
	assert.ErrorIs(t, err, ErrInvalidKey)
	key, err := ParseKey(" " + testKey + "\n")
	require.NoError(t, err)
	assert.Len(t, key, KeyLen)

	_, err = Seal([]byte("short"), []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestDigest(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Digest(nil))
	assert.Len(t, Digest([]byte("hi")), 64)
}
