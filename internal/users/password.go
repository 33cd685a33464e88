package users

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

const (
	saltLen = 16
	keyLen  = 32
)

// hashPassword derives an argon2id key from password with a fresh salt.
func hashPassword(password string) (salt, hash []byte, err error) {
	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}
	return salt, deriveKey(password, salt), nil
}

func verifyPassword(password string, salt, hash []byte) bool {
	return subtle.ConstantTimeCompare(deriveKey(password, salt), hash) == 1
}

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, keyLen)
}
