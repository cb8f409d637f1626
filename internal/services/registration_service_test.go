package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveall/loveall-backend/internal/models"
)

func pendingFixture(email string, ttl time.Duration) PendingBusiness {
	return PendingBusiness{
		Business: models.Business{
			BusinessName:  "Cafe Aroma",
			BusinessEmail: email,
		},
		OTP:       "123456",
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestRegistration_PutAndGet(t *testing.T) {
	service := NewRegistrationService()
	defer service.Close()

	email := "owner@cafearoma.com"
	service.Put(email, pendingFixture(email, 10*time.Minute))

	reg, err := service.Get(email)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Aroma", reg.Business.BusinessName)
	assert.Equal(t, "123456", reg.OTP)

	// Get does not consume the entry
	_, err = service.Get(email)
	assert.NoError(t, err)
}

func TestRegistration_GetUnknownEmail(t *testing.T) {
	service := NewRegistrationService()
	defer service.Close()

	_, err := service.Get("nobody@example.com")
	assert.ErrorIs(t, err, ErrNoPendingRegistration)
}

func TestRegistration_PutReplaces(t *testing.T) {
	service := NewRegistrationService()
	defer service.Close()

	email := "owner@cafearoma.com"
	service.Put(email, pendingFixture(email, 10*time.Minute))

	replacement := pendingFixture(email, 10*time.Minute)
	replacement.OTP = "999999"
	service.Put(email, replacement)

	reg, err := service.Get(email)
	require.NoError(t, err)
	assert.Equal(t, "999999", reg.OTP)
}

func TestRegistration_ConfirmConsumes(t *testing.T) {
	service := NewRegistrationService()
	defer service.Close()

	email := "owner@cafearoma.com"
	service.Put(email, pendingFixture(email, 10*time.Minute))

	reg, err := service.Confirm(email, "123456")
	require.NoError(t, err)
	assert.Equal(t, email, reg.Business.BusinessEmail)

	_, err = service.Confirm(email, "123456")
	assert.ErrorIs(t, err, ErrNoPendingRegistration)
}

func TestRegistration_ConfirmWrongCodeKeepsEntry(t *testing.T) {
	service := NewRegistrationService()
	defer service.Close()

	email := "owner@cafearoma.com"
	service.Put(email, pendingFixture(email, 10*time.Minute))

	_, err := service.Confirm(email, "000000")
	assert.ErrorIs(t, err, ErrRegistrationOTPMismatch)

	// Wrong code does not consume: the right code afterwards still works
	_, err = service.Confirm(email, "123456")
	assert.NoError(t, err)
}

func TestRegistration_ConfirmAtMostOnce(t *testing.T) {
	service := NewRegistrationService()
	defer service.Close()

	email := "owner@cafearoma.com"
	service.Put(email, pendingFixture(email, 10*time.Minute))

	var mu sync.Mutex
	var winners int
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.Confirm(email, "123456"); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestRegistration_ExpiredEntry(t *testing.T) {
	service := NewRegistrationService()
	defer service.Close()

	email := "owner@cafearoma.com"
	service.Put(email, pendingFixture(email, -time.Minute))

	_, err := service.Get(email)
	assert.ErrorIs(t, err, ErrNoPendingRegistration)

	_, err = service.Confirm(email, "123456")
	assert.ErrorIs(t, err, ErrRegistrationExpired)
}
