package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// tempPasswordCharset is the alphabet for generated temporary passwords.
// It always includes at least one of each required character class.
const tempPasswordCharset = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789!@#$%^&*"

// PasswordService handles password hashing and temporary credential
// generation.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a new password service using the default
// bcrypt cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: bcrypt.DefaultCost}
}

// Hash hashes a plaintext password with bcrypt.
func (s *PasswordService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether the plaintext password matches the stored hash.
func (s *PasswordService) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateTempPassword produces a random password for manually verified
// businesses. The result passes the platform's strength rules.
func (s *PasswordService) GenerateTempPassword() (string, error) {
	// One guaranteed character per class, then filler from the full set.
	classes := []string{
		"ABCDEFGHJKLMNPQRSTUVWXYZ",
		"abcdefghijkmnpqrstuvwxyz",
		"23456789",
		"!@#$%^&*",
	}

	chars := make([]byte, 0, 10)
	for _, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < 10 {
		c, err := randomChar(tempPasswordCharset)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Shuffle so the class-guaranteed characters are not positional.
	for i := len(chars) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("failed to shuffle password: %w", err)
		}
		chars[i], chars[j.Int64()] = chars[j.Int64()], chars[i]
	}

	return string(chars), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random character: %w", err)
	}
	return set[n.Int64()], nil
}
