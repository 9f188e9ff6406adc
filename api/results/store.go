package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"WorldCup/api/bracket"
	"WorldCup/api/cache"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound       = errors.New("result not found")
	ErrInvalidSession = errors.New("session id is required")
)

const DefaultTTL = 24 * time.Hour

// Store keeps finished play results per (session, game), the way a browser
// keeps them in session storage. Corrupt payloads are dropped and read back
// as not found.
type Store struct {
	kv  cache.Store
	ttl time.Duration
	log logrus.FieldLogger
}

func NewStore(kv cache.Store, ttl time.Duration, log logrus.FieldLogger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{kv: kv, ttl: ttl, log: log}
}

func key(session string, gameID uint) string {
	return fmt.Sprintf("result:%s:%d", session, gameID)
}

func checkSession(session string) error {
	if strings.TrimSpace(session) == "" {
		return ErrInvalidSession
	}
	return nil
}

func (s *Store) Save(ctx context.Context, session string, res bracket.Result) error {
	if err := checkSession(session); err != nil {
		return err
	}
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := s.kv.Set(ctx, key(session, res.GameID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, session string, gameID uint) (bracket.Result, error) {
	if err := checkSession(session); err != nil {
		return bracket.Result{}, err
	}
	k := key(session, gameID)
	raw, err := s.kv.Get(ctx, k)
	if err != nil {
		return bracket.Result{}, fmt.Errorf("failed to read result: %w", err)
	}
	if raw == "" {
		return bracket.Result{}, ErrNotFound
	}

	var res bracket.Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil || res.GameID != gameID {
		s.log.WithField("key", k).Debug("discarding corrupt stored result")
		_ = s.kv.Delete(ctx, k)
		return bracket.Result{}, ErrNotFound
	}
	return res, nil
}

func (s *Store) Delete(ctx context.Context, session string, gameID uint) error {
	if err := checkSession(session); err != nil {
		return err
	}
	return s.kv.Delete(ctx, key(session, gameID))
}
