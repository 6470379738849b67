package config

import (
	"bufio"
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emoji-connoisseur/connoisseur/common/crypto"
	"github.com/emoji-connoisseur/connoisseur/log"
	"golang.org/x/crypto/scrypt"
)

const (
	// EncryptConfirmString has a the general confirmation string to allow us to
	// see if the file is correctly encrypted
	EncryptConfirmString = "CONNOISSEUR-VAULT"
	// SaltPrefix string
	SaltPrefix = "~CON~SALT~"
	// SaltRandomLength is the number of random bytes to append after the prefix string
	SaltRandomLength = 12

	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// stdin is swapped in tests
var stdin = bufio.NewReader(os.Stdin)

// promptForConfigEncryption asks for encryption confirmation
// returns true if encryption was desired, false otherwise
func promptForConfigEncryption() (bool, error) {
	log.Infoln(log.ConfigMgr, "Would you like to encrypt your config file (y/n)?")

	input, err := readLine()
	if err != nil {
		return false, err
	}
	return yesOrNo(input), nil
}

// PromptForConfigKey asks for configuration key
// if initialSetup is true, the password needs to be repeated
func PromptForConfigKey(initialSetup bool) ([]byte, error) {
	for {
		key, err := getSensitiveInput("Please enter in your password: ")
		if err != nil {
			return nil, err
		}
		if len(key) == 0 {
			continue
		}
		if !initialSetup {
			return key, nil
		}
		confirm, err := getSensitiveInput("Please re-enter your password: ")
		if err != nil {
			return nil, err
		}
		if bytes.Equal(key, confirm) {
			return key, nil
		}
		log.Warnln(log.ConfigMgr, "Passwords did not match, please try again.")
	}
}

func getSensitiveInput(prompt string) ([]byte, error) {
	log.Infoln(log.ConfigMgr, prompt)
	line, err := readLine()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func readLine() (string, error) {
	line, err := stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("%w: %w", errUserInput, err)
	}
	return strings.TrimSpace(line), nil
}

func yesOrNo(input string) bool {
	switch strings.ToLower(input) {
	case "y", "yes":
		return true
	}
	return false
}

// EncryptConfigFile encrypts json config data with a key
func EncryptConfigFile(configData, key []byte) ([]byte, error) {
	sessionDK, salt, err := makeNewSessionDK(key)
	if err != nil {
		return nil, err
	}
	c := &Config{
		sessionDK:  sessionDK,
		storedSalt: salt,
	}
	return c.encryptConfigFile(configData)
}

// encryptConfigFile encrypts configuration data that is parsed in with a key
// and returns it as a byte array with an error
func (c *Config) encryptConfigFile(configData []byte) ([]byte, error) {
	gcm, err := newGCM(c.sessionDK)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	appendedFile := []byte(EncryptConfirmString)
	appendedFile = append(appendedFile, c.storedSalt...)
	appendedFile = append(appendedFile, nonce...)
	return gcm.Seal(appendedFile, nonce, configData, nil), nil
}

// DecryptConfigFile decrypts config data with a key
func DecryptConfigFile(d, key []byte) ([]byte, error) {
	return (&Config{}).decryptConfigData(bytes.NewReader(d), key)
}

// decryptConfigData decrypts configuration data with the supplied key and
// returns the un-encrypted data as a byte array with an error
func (c *Config) decryptConfigData(configReader io.Reader, key []byte) ([]byte, error) {
	configData, err := io.ReadAll(configReader)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(configData, []byte(EncryptConfirmString)) {
		return nil, errNoPrefix
	}
	configData = configData[len(EncryptConfirmString):]

	saltLen := len(SaltPrefix) + SaltRandomLength
	if len(configData) < saltLen || !bytes.HasPrefix(configData, []byte(SaltPrefix)) {
		return nil, errNoPrefix
	}
	salt := configData[:saltLen]
	configData = configData[saltLen:]

	dk, err := getScryptDK(key, salt)
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(dk)
	if err != nil {
		return nil, err
	}
	if len(configData) < gcm.NonceSize()+aes.BlockSize {
		return nil, errAESBlockSize
	}
	nonce, ciphertext := configData[:gcm.NonceSize()], configData[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}

	c.sessionDK, c.storedSalt = dk, bytes.Clone(salt)
	return plain, nil
}

func newGCM(dk []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(dk)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// IsEncrypted returns if the data sequence is encrypted
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(EncryptConfirmString))
}

// IsFileEncrypted returns if the file is encrypted
// Returns false on error opening or reading
func IsFileEncrypted(f string) bool {
	r, err := os.Open(f)
	if err != nil {
		return false
	}
	defer r.Close()
	prefix := make([]byte, len(EncryptConfirmString))
	if _, err = io.ReadFull(r, prefix); err != nil {
		return false
	}
	return IsEncrypted(prefix)
}

func getScryptDK(key, salt []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errKeyIsEmpty
	}
	return scrypt.Key(key, salt, scryptN, scryptR, scryptP, scryptKeyLen)
}

func makeNewSessionDK(key []byte) (dk, storedSalt []byte, err error) {
	storedSalt, err = crypto.GetRandomSalt([]byte(SaltPrefix), SaltRandomLength)
	if err != nil {
		return nil, nil, err
	}

	dk, err = getScryptDK(key, storedSalt)
	if err != nil {
		return nil, nil, err
	}
	return dk, storedSalt, nil
}
