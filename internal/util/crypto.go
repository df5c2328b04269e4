package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// ----------------- AES-256-GCM 加密/解密（用于备份文件） -----------------

const keySaltSize = 16

// deriveKey 用 PBKDF2 从配置口令派生 32 字节 key，
// salt 随密文一起存储，配置口令长度任意。
func deriveKey(keyStr string, salt []byte) []byte {
	return pbkdf2.Key([]byte(keyStr), salt, 100_000, 32, sha256.New)
}

// EncryptAES 使用 AES-256-GCM 加密数据，返回 salt+nonce+ciphertext。
func EncryptAES(keyStr string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, keySaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(keyStr, salt))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)
	// 前面拼上 salt 和 nonce，解密时按长度拆回来
	out := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// DecryptAES 使用 AES-256-GCM 解密数据（输入必须是 salt+nonce+ciphertext）。
func DecryptAES(keyStr string, data []byte) ([]byte, error) {
	if len(data) < keySaltSize {
		return nil, fmt.Errorf("cipher too short")
	}
	salt, rest := data[:keySaltSize], data[keySaltSize:]

	block, err := aes.NewCipher(deriveKey(keyStr, salt))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	ns := aesgcm.NonceSize()
	if len(rest) < ns {
		return nil, fmt.Errorf("cipher too short")
	}
	nonce, ciphertext := rest[:ns], rest[ns:]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
