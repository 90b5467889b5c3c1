package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quizzes/internal/config"
	"github.com/stemsi/exstem-quizzes/internal/migration"
	"github.com/stemsi/exstem-quizzes/internal/model"
	"github.com/stemsi/exstem-quizzes/internal/projection"
	"golang.org/x/crypto/blake2b"
)

// Projection kinds used in cache keys.
const (
	ProjectionPublic        = "public"
	ProjectionModelSolution = "model_solution"
)

// SpecService migrates private specs and projects them into their student-facing views.
// Projections are cached by a fingerprint of the private spec.
type SpecService struct {
	cache ProjectionCache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewSpecService creates a new SpecService. cache may be nil.
func NewSpecService(cache ProjectionCache, ttl time.Duration, log zerolog.Logger) *SpecService {
	return &SpecService{
		cache: cache,
		ttl:   ttl,
		log:   log.With().Str("component", "spec_service").Logger(),
	}
}

// PublicSpec returns the serialized public view of a private spec.
func (s *SpecService) PublicSpec(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	return s.project(ctx, ProjectionPublic, raw, func(quiz *model.PrivateSpecQuiz) (any, error) {
		return projection.ToPublicSpec(quiz)
	})
}

// ModelSolution returns the serialized model-solution view of a private spec.
func (s *SpecService) ModelSolution(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	return s.project(ctx, ProjectionModelSolution, raw, func(quiz *model.PrivateSpecQuiz) (any, error) {
		return projection.ToModelSolutionSpec(quiz)
	})
}

func (s *SpecService) project(ctx context.Context, kind string, raw json.RawMessage,
	build func(*model.PrivateSpecQuiz) (any, error)) (json.RawMessage, error) {
	if isNull(raw) {
		return nil, projection.ErrNilSpec
	}

	fingerprint, err := Fingerprint(raw)
	if err != nil {
		return nil, err
	}
	key := config.CacheKey.ProjectionKey(kind, fingerprint)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn().Err(err).Str("key", key).Msg("Projection cache read failed")
		}
	}

	quiz, err := migration.MigratePrivateSpec(raw)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, projection.ErrNilSpec
	}
	view, err := build(quiz)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("encode %s projection: %w", kind, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Projection cache write failed")
		}
	}
	return out, nil
}

// Fingerprint returns a hex BLAKE2b-256 digest of raw with insignificant whitespace removed.
func Fingerprint(raw json.RawMessage) (string, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return "", fmt.Errorf("invalid private spec: %w", err)
	}
	sum := blake2b.Sum256(compact.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
