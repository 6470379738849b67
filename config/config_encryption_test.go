package config

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptConfigFile(t *testing.T) {
	t.Parallel()
	_, err := EncryptConfigFile([]byte("test"), nil)
	require.ErrorIs(t, err, errKeyIsEmpty)

	encrypted, err := EncryptConfigFile([]byte(`{"name":"bot"}`), []byte("key"))
	require.NoError(t, err)
	assert.True(t, IsEncrypted(encrypted))
	assert.False(t, bytes.Contains(encrypted, []byte("bot")), "plain text must not leak")

	decrypted, err := DecryptConfigFile(encrypted, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, `{"name":"bot"}`, string(decrypted))

	_, err = DecryptConfigFile(encrypted, []byte("wrong"))
	assert.Error(t, err)

	_, err = DecryptConfigFile([]byte(`{"name":"bot"}`), []byte("key"))
	assert.ErrorIs(t, err, errNoPrefix)

	_, err = DecryptConfigFile([]byte(EncryptConfirmString+SaltPrefix+"123456789012"+"short"), []byte("key"))
	assert.ErrorIs(t, err, errAESBlockSize)
}

func TestEncryptTwiceDiffers(t *testing.T) {
	t.Parallel()
	a, err := EncryptConfigFile([]byte("data"), []byte("key"))
	require.NoError(t, err)
	b, err := EncryptConfigFile([]byte("data"), []byte("key"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "salt and nonce must be random")
}

func TestIsFileEncrypted(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	plain := filepath.Join(dir, File)
	require.NoError(t, os.WriteFile(plain, []byte(`{}`), 0o600))
	assert.False(t, IsFileEncrypted(plain))

	encrypted, err := EncryptConfigFile([]byte(`{}`), []byte("key"))
	require.NoError(t, err)
	enc := filepath.Join(dir, EncryptedFile)
	require.NoError(t, os.WriteFile(enc, encrypted, 0o600))
	assert.True(t, IsFileEncrypted(enc))
	assert.False(t, IsFileEncrypted(filepath.Join(dir, "missing")))
}

// setStdin replaces the prompt input, tests using it must not run in parallel
func setStdin(t *testing.T, input string) {
	t.Helper()
	old := stdin
	stdin = bufio.NewReader(strings.NewReader(input))
	t.Cleanup(func() { stdin = old })
}

func TestPromptForConfigKey(t *testing.T) {
	setStdin(t, "\npass\n")
	key, err := PromptForConfigKey(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("pass"), key, "empty input must be asked again")

	setStdin(t, "pass\nnope\npass\npass\n")
	key, err = PromptForConfigKey(true)
	require.NoError(t, err)
	assert.Equal(t, []byte("pass"), key)

	setStdin(t, "")
	_, err = PromptForConfigKey(false)
	assert.ErrorIs(t, err, errUserInput)
}

func TestPromptForConfigEncryption(t *testing.T) {
	setStdin(t, "Y\n")
	confirm, err := promptForConfigEncryption()
	require.NoError(t, err)
	assert.True(t, confirm)

	setStdin(t, "n")
	confirm, err = promptForConfigEncryption()
	require.NoError(t, err)
	assert.False(t, confirm)
}
