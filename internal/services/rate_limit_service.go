package services

import (
	"fmt"
	"sync"
	"time"
)

// RateLimitService enforces a fixed-window per-IP request limit across
// the whole API, mirroring the gateway's 50 requests per minute policy.
// Counters live in memory; a restart resets them, which is acceptable
// for abuse throttling.
type RateLimitService struct {
	mu       sync.Mutex
	windows  map[string]*requestWindow
	limit    int
	duration time.Duration
	stop     chan struct{}
}

type requestWindow struct {
	count   int
	startAt time.Time
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// NewRateLimitService creates a new rate limit service allowing `limit`
// requests per `window` for each client IP, and starts its sweeper.
func NewRateLimitService(limit int, window time.Duration) *RateLimitService {
	s := &RateLimitService{
		windows:  make(map[string]*requestWindow),
		limit:    limit,
		duration: window,
		stop:     make(chan struct{}),
	}
	go s.sweeper()
	return s
}

// Allow records a request from the given IP and returns a RateLimitError
// if the IP has exhausted the current window.
func (s *RateLimitService) Allow(ip string) error {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[ip]
	if !ok || now.Sub(w.startAt) >= s.duration {
		s.windows[ip] = &requestWindow{count: 1, startAt: now}
		return nil
	}

	if w.count >= s.limit {
		retryAfter := w.startAt.Add(s.duration)
		return &RateLimitError{
			Message:    fmt.Sprintf("Too many requests. Please try again after %s", retryAfter.Format("15:04:05")),
			RetryAfter: retryAfter,
		}
	}

	w.count++
	return nil
}

// Close stops the window sweeper.
func (s *RateLimitService) Close() {
	close(s.stop)
}

func (s *RateLimitService) sweeper() {
	ticker := time.NewTicker(s.duration)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for ip, w := range s.windows {
				if now.Sub(w.startAt) >= s.duration {
					delete(s.windows, ip)
				}
			}
			s.mu.Unlock()
		}
	}
}
