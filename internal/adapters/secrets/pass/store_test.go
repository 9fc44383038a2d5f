package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutUsesPassInsertUnderPrefix(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		prefix: "wmp",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, []string{"insert", "-m", "-f", "wmp/wm/A1/password"}, args)
			assert.Equal(t, "hunter2\n", input)
			return "", "", nil
		},
	}

	require.NoError(t, store.Put(context.Background(), "wm://A1/password", "hunter2"))
	assert.True(t, called)
}

func TestStoreGetKeepsFirstLineOnly(t *testing.T) {
	t.Parallel()

	store := &Store{
		prefix: "wmp",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "wmp/wm/A1/password"}, args)
			assert.Empty(t, input)
			return "hunter2\r\nurl: https://www.wm.com\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), "wm://A1/password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)
}

func TestStoreGetMissingEntry(t *testing.T) {
	t.Parallel()

	store := &Store{
		prefix: "wmp",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "Error: wmp/wm/A1/password is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), "wm://A1/password")
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreDeleteUsesPassRemoveAndIgnoresMissing(t *testing.T) {
	t.Parallel()

	calls := 0
	store := &Store{
		prefix: "wmp",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			calls++
			assert.Equal(t, []string{"rm", "-f", "wmp/wm/A1/password"}, args)
			if calls == 2 {
				return "", "Error: wmp/wm/A1/password is not in the password store.", errors.New("exit status 1")
			}
			return "", "", nil
		},
	}

	require.NoError(t, store.Delete(context.Background(), "wm://A1/password"))
	require.NoError(t, store.Delete(context.Background(), "wm://A1/password"))
}

func TestStoreGetReturnsClearError(t *testing.T) {
	t.Parallel()

	store := &Store{
		prefix: "wmp",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "gpg: decryption failed: No secret key", errors.New("exit status 2")
		},
	}

	_, err := store.Get(context.Background(), "wm://A1/password")
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass get")
	assert.ErrorContains(t, err, "wmp/wm/A1/password")
	assert.ErrorContains(t, err, "No secret key")
}

func TestNewStoreDefaultsPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "wmp/wm/A1/password", NewStore("").entryName("wm://A1/password"))
}
