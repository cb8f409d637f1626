package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/loveall/loveall-backend/internal/models"
)

const (
	// OTPLength is the default length of the OTP code
	OTPLength = 6
)

var (
	// ErrOTPExpired indicates the OTP has expired
	ErrOTPExpired = fmt.Errorf("OTP has expired")

	// ErrOTPInvalid indicates the OTP is incorrect
	ErrOTPInvalid = fmt.Errorf("invalid OTP code")

	// ErrNoOTPFound indicates no OTP has been issued for the account
	ErrNoOTPFound = fmt.Errorf("no OTP found for this account")
)

// OTPService handles OTP generation and validation. Codes are stored on
// the principal row itself, so the service only deals with generation,
// expiry arithmetic and comparison.
type OTPService struct {
	length int
	expiry time.Duration
}

// NewOTPService creates a new OTP service. length is the number of
// digits in generated codes (OTPLength when non-positive) and
// expiryMinutes controls how long a generated code stays valid.
func NewOTPService(length, expiryMinutes int) *OTPService {
	if length <= 0 {
		length = OTPLength
	}
	return &OTPService{
		length: length,
		expiry: time.Duration(expiryMinutes) * time.Minute,
	}
}

// Length returns the number of digits in generated codes.
func (s *OTPService) Length() int {
	return s.length
}

// ExpiryMinutes returns the configured code lifetime in whole minutes.
func (s *OTPService) ExpiryMinutes() int {
	return int(s.expiry / time.Minute)
}

// Generate produces a new random numeric code and its expiry time.
func (s *OTPService) Generate() (string, time.Time, error) {
	otp, err := generateRandomOTP(s.length)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate OTP: %w", err)
	}
	return otp, time.Now().Add(s.expiry), nil
}

// Validate compares a submitted code against the stored code and expiry.
// A missing stored code yields ErrNoOTPFound, a stale one ErrOTPExpired,
// a mismatch ErrOTPInvalid.
func (s *OTPService) Validate(submitted string, stored models.NullString, expiresAt models.NullTime) error {
	if !stored.Valid || stored.String == "" {
		return ErrNoOTPFound
	}
	if !expiresAt.Valid || time.Now().After(expiresAt.Time) {
		return ErrOTPExpired
	}
	if stored.String != submitted {
		return ErrOTPInvalid
	}
	return nil
}

// Matches reports whether the submitted code equals the stored one,
// ignoring expiry. Used by the password reset flow which accepts the
// last issued code regardless of age.
func (s *OTPService) Matches(submitted string, stored models.NullString) bool {
	return stored.Valid && stored.String != "" && stored.String == submitted
}

// generateRandomOTP generates a cryptographically secure random numeric
// code of the given number of digits.
func generateRandomOTP(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}
