package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/loveall/loveall-backend/internal/models"
)

var (
	// ErrNoPendingRegistration indicates no registration is waiting for
	// OTP confirmation under the given email
	ErrNoPendingRegistration = fmt.Errorf("no pending registration for this email")

	// ErrRegistrationOTPMismatch indicates the supplied code does not match
	// the pending registration; the entry is left in place for a retry
	ErrRegistrationOTPMismatch = fmt.Errorf("registration OTP does not match")

	// ErrRegistrationExpired indicates the pending registration's OTP window
	// has closed
	ErrRegistrationExpired = fmt.Errorf("pending registration has expired")
)

// PendingBusiness is a business registration held in memory until its
// OTP is confirmed. Nothing is written to the database before promotion.
type PendingBusiness struct {
	Business  models.Business
	OTP       string
	ExpiresAt time.Time
}

// RegistrationService keeps unconfirmed business registrations in memory,
// keyed by email. Entries expire with their OTP and are swept by a
// background janitor. Confirm removes the entry on a matching code, so
// promotion happens at most once even under concurrent confirmation
// attempts.
type RegistrationService struct {
	mu      sync.Mutex
	pending map[string]PendingBusiness
	stop    chan struct{}
}

// NewRegistrationService creates a new registration service and starts
// its expiry janitor.
func NewRegistrationService() *RegistrationService {
	s := &RegistrationService{
		pending: make(map[string]PendingBusiness),
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Put stores (or replaces) a pending registration for the given email.
func (s *RegistrationService) Put(email string, reg PendingBusiness) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[email] = reg
}

// Get returns the pending registration for the email without removing it.
func (s *RegistrationService) Get(email string) (PendingBusiness, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.pending[email]
	if !ok || time.Now().After(reg.ExpiresAt) {
		return PendingBusiness{}, ErrNoPendingRegistration
	}
	return reg, nil
}

// Confirm checks the OTP against the pending registration and consumes
// the entry only on a match, all under one lock. A wrong code leaves
// the entry in place; the consumed entry is always the one that was
// checked, so a replacement stored between check and removal can never
// be promoted unverified.
func (s *RegistrationService) Confirm(email, otp string) (PendingBusiness, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.pending[email]
	if !ok {
		return PendingBusiness{}, ErrNoPendingRegistration
	}
	if reg.OTP != otp {
		return PendingBusiness{}, ErrRegistrationOTPMismatch
	}
	if time.Now().After(reg.ExpiresAt) {
		delete(s.pending, email)
		return PendingBusiness{}, ErrRegistrationExpired
	}
	delete(s.pending, email)
	return reg, nil
}

// Close stops the expiry janitor.
func (s *RegistrationService) Close() {
	close(s.stop)
}

func (s *RegistrationService) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for email, reg := range s.pending {
				if now.After(reg.ExpiresAt) {
					delete(s.pending, email)
				}
			}
			s.mu.Unlock()
		}
	}
}
