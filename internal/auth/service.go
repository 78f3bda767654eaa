package auth

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"libraryapi/internal/metrics"
	"libraryapi/internal/platform/crypto"
)

var (
	// ErrInvalidSecret is returned when the presented secret does not match the configured one.
	ErrInvalidSecret = errors.New("invalid secret key")
)

// Service exchanges the shared secret for access tokens.
type Service struct {
	secret  string
	ttl     time.Duration
	log     *zap.Logger
	metrics metrics.Recorder
}

func NewService(secret string, ttl time.Duration, log *zap.Logger, rec metrics.Recorder) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		secret:  secret,
		ttl:     ttl,
		log:     log,
		metrics: rec,
	}
}

// IssueToken returns a signed token for the library identity when provided equals the
// configured secret. A nil provided value never matches.
func (s *Service) IssueToken(provided *string) (string, error) {
	if provided == nil || *provided != s.secret {
		s.metrics.RecordTokenRejected()
		s.log.Warn("token request rejected: secret key mismatch")
		return "", ErrInvalidSecret
	}

	token, err := crypto.GenerateToken(s.secret, crypto.LibraryIdentity, s.ttl)
	if err != nil {
		return "", err
	}
	s.metrics.RecordTokenIssued()
	return token, nil
}
