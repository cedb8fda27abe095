package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/ChielvanV/BugBeheer/internal/config"
	"github.com/ChielvanV/BugBeheer/internal/domain"
	"github.com/rs/zerolog"
)

// Sessions is the time-boxed gate in front of every record-store operation.
// A session is a fixed wall-clock window: expiry is set at login and never
// renewed by activity.
type Sessions struct {
	cfg config.Config
	log zerolog.Logger
	now func() time.Time

	mu     sync.Mutex
	active map[string]time.Time // token -> expiry
}

func NewSessions(cfg config.Config, log zerolog.Logger) *Sessions {
	return &Sessions{cfg: cfg, log: log, now: time.Now, active: make(map[string]time.Time)}
}

// Login checks the credential pair and, on match, issues an opaque bearer
// token valid for the configured TTL. expiresIn is reported in seconds.
func (s *Sessions) Login(username, password string) (token string, expiresIn int, err error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AuthUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AuthPassword)) == 1
	if !userOK || !passOK {
		return "", 0, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", 0, err
	}
	token = hex.EncodeToString(buf)
	expiry := s.now().Add(s.cfg.SessionTTL)
	s.mu.Lock()
	s.active[token] = expiry
	s.mu.Unlock()
	s.log.Info().Time("expires", expiry).Msg("session opened")
	return token, int(s.cfg.SessionTTL / time.Second), nil
}

// Validate re-checks the session on every gated operation. Expired entries
// are dropped eagerly so a later login cannot resurrect them.
func (s *Sessions) Validate(token string) error {
	if token == "" {
		return fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.active[token]
	if !ok {
		return fmt.Errorf("%w: unknown token", domain.ErrUnauthorized)
	}
	if s.now().After(expiry) {
		delete(s.active, token)
		return fmt.Errorf("%w: session expired", domain.ErrUnauthorized)
	}
	return nil
}

// Logout drops the session immediately. In-flight requests are not aborted;
// their results are simply no longer reachable through the gate.
func (s *Sessions) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[token]; ok {
		delete(s.active, token)
		s.log.Info().Msg("session closed")
	}
}

// Sweep evicts expired sessions and returns how many were dropped. Driven
// by the recurring timer job.
func (s *Sessions) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for token, expiry := range s.active {
		if now.After(expiry) {
			delete(s.active, token)
			n++
		}
	}
	return n
}
