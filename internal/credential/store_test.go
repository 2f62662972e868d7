package credential_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetinvite/internal/credential"
)

func TestFileStore(t *testing.T) {
	t.Parallel()

	t.Run("missing file is not found", func(t *testing.T) {
		t.Parallel()

		s := credential.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
		_, err := s.Get(credential.APIKeyName)
		assert.ErrorIs(t, err, credential.ErrNotFound)

		key, err := credential.APIKey(s)
		require.NoError(t, err)
		assert.Empty(t, key)
	})

	t.Run("set then get", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "store.json")
		s := credential.NewFileStore(path)
		require.NoError(t, s.Set(credential.APIKeyName, "re_abc123"))
		require.NoError(t, s.Set("other", "value"))

		key, err := credential.APIKey(s)
		require.NoError(t, err)
		assert.Equal(t, "re_abc123", key)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "store.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := credential.NewFileStore(path).Get(credential.APIKeyName)
		require.Error(t, err)
		assert.NotErrorIs(t, err, credential.ErrNotFound)
	})
}

type failingStore struct{}

func (failingStore) Get(string) (string, error) { return "", errors.New("disk on fire") }

func TestChain(t *testing.T) {
	t.Parallel()

	t.Run("first value wins", func(t *testing.T) {
		t.Parallel()

		c := credential.Chain{
			credential.Static{credential.APIKeyName: ""},
			credential.Static{credential.APIKeyName: "from-env"},
			credential.Static{credential.APIKeyName: "from-file"},
		}
		v, err := c.Get(credential.APIKeyName)
		require.NoError(t, err)
		assert.Equal(t, "from-env", v)
	})

	t.Run("all missing", func(t *testing.T) {
		t.Parallel()

		_, err := credential.Chain{credential.Static{}}.Get(credential.APIKeyName)
		assert.ErrorIs(t, err, credential.ErrNotFound)
	})

	t.Run("store error stops the chain", func(t *testing.T) {
		t.Parallel()

		c := credential.Chain{failingStore{}, credential.Static{credential.APIKeyName: "x"}}
		_, err := c.Get(credential.APIKeyName)
		assert.EqualError(t, err, "disk on fire")
	})
}

func TestMask(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "****", credential.Mask("abc"))
	assert.Equal(t, "****f789", credential.Mask("re_abcdef789"))
}
