package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"math"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	return hex.EncodeToString(cipherText), nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(cipherText) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}

// ParseList accepts either a JSON array of strings or a comma separated list.
func ParseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var items []string
	if strings.HasPrefix(raw, "[") && json.Unmarshal([]byte(raw), &items) == nil {
		return compact(items)
	}
	return compact(strings.Split(raw, ","))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DisplayName picks the name shown next to user generated content.
func DisplayName(name, email string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "Explorer"
}

func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Excerpt truncates text to n runes and marks the cut.
func Excerpt(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text + "..."
	}
	return string(r[:n]) + "..."
}

// ObjectKey builds a unique storage key that keeps a readable slug.
func ObjectKey(prefix, name string) string {
	ext := strings.ToLower(path.Ext(name))
	base := slug.Make(strings.TrimSuffix(name, path.Ext(name)))
	if base == "" {
		base = "image"
	}
	return path.Join(prefix, base+"-"+uuid.NewString()+ext)
}

func Slugify(s string) string {
	return slug.Make(s)
}
