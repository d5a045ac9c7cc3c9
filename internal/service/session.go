package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/blake2b"

	"github.com/nirik/fas"
	"github.com/nirik/fas/internal/domain"
)

var tracer = otel.Tracer("session")

const sessionKeyPrefix = "fas:session:"

// Store is the subset of the memcache client used for sessions.
type Store interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
}

// SessionService maps bearer tokens to people. Only a hash of the token is
// used as the cache key.
type SessionService struct {
	store Store
	ttl   time.Duration
}

func NewSessionService(store Store, ttl time.Duration) *SessionService {
	return &SessionService{
		store: store,
		ttl:   ttl,
	}
}

// sessionKey is shared with the login frontend, which writes sessions
// directly: memcache key "fas:session:" + hex(blake2b-256(token)), value a
// JSON fas.Session ({"personId", "username", "issuedAt"}), expiry the
// session TTL. Issue writes the same format.
func sessionKey(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return sessionKeyPrefix + hex.EncodeToString(sum[:])
}

// Issue stores a new session for person and returns its token.
func (s *SessionService) Issue(ctx context.Context, person domain.Person) (string, error) {
	_, span := tracer.Start(ctx, "Session.Service.Issue")
	defer span.End()

	token := uuid.NewString()
	value, err := json.Marshal(fas.Session{
		PersonID: person.ID,
		Username: person.Username,
		IssuedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}

	err = s.store.Set(&memcache.Item{
		Key:        sessionKey(token),
		Value:      value,
		Expiration: int32(s.ttl.Seconds()),
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "Session.Service.Issue: store.Set failed"))
		return "", err
	}
	return token, nil
}

// Resolve returns the session behind token or domain.ErrNotAuthenticated.
func (s *SessionService) Resolve(ctx context.Context, token string) (fas.Session, error) {
	_, span := tracer.Start(ctx, "Session.Service.Resolve")
	defer span.End()

	item, err := s.store.Get(sessionKey(token))
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return fas.Session{}, domain.ErrNotAuthenticated
		}
		span.RecordError(errors.Wrap(err, "Session.Service.Resolve: store.Get failed"))
		return fas.Session{}, err
	}

	var session fas.Session
	if err := json.Unmarshal(item.Value, &session); err != nil {
		span.RecordError(errors.Wrap(err, "Session.Service.Resolve: malformed session"))
		return fas.Session{}, domain.ErrNotAuthenticated
	}
	return session, nil
}

func (s *SessionService) Revoke(ctx context.Context, token string) error {
	err := s.store.Delete(sessionKey(token))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}
