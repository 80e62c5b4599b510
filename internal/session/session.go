// Package session keeps the artifacts of a generation run so they can be
// inspected, edited and re-rendered without calling the backend again.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/applykit/internal/pipeline"
	"github.com/jonathan/applykit/internal/tailoring"
	"github.com/jonathan/applykit/internal/types"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// ErrNoArtifact is returned when editing an artifact the run did not produce.
var ErrNoArtifact = errors.New("artifact not available in this session")

// ErrEmptyContent is returned when an edit would leave an artifact blank.
var ErrEmptyContent = errors.New("content must not be empty")

// Session is the persisted state of one run. Errors holds the message of
// each failed artifact keyed by step name.
type Session struct {
	ID        string              `json:"id"`
	JobAd     types.JobAd         `json:"job_ad"`
	Skills    types.SkillSet      `json:"skills"`
	CV        *types.TailoredCV   `json:"cv,omitempty"`
	Letters   []types.CoverLetter `json:"letters"`
	Errors    map[string]string   `json:"errors,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// New creates a session from a finished run.
func New(res *pipeline.Result) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		JobAd:     res.JobAd,
		Skills:    res.Skills,
		CV:        res.CV,
		Letters:   res.Letters,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.Skills == nil {
		s.Skills = types.SkillSet{}
	}
	if s.Letters == nil {
		s.Letters = []types.CoverLetter{}
	}
	if len(res.Errors) > 0 {
		s.Errors = make(map[string]string, len(res.Errors))
		for step, err := range res.Errors {
			s.Errors[step] = err.Error()
		}
	}
	return s
}

// Result returns the artifacts in pipeline form for rendering.
func (s *Session) Result() *pipeline.Result {
	return &pipeline.Result{
		JobAd:   s.JobAd,
		Skills:  s.Skills,
		CV:      s.CV,
		Letters: s.Letters,
	}
}

// SetCVContent replaces the CV content wholesale and re-runs the local
// quality checks against it.
func (s *Session) SetCVContent(content string) error {
	if s.CV == nil {
		return fmt.Errorf("cv: %w", ErrNoArtifact)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("cv: %w", ErrEmptyContent)
	}
	s.CV.Content = content
	tailoring.Recheck(s.CV.Analysis, content, s.CV.Template)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// SetLetterContent replaces the content of the letter with the given version.
func (s *Session) SetLetterContent(version int, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("letter %d: %w", version, ErrEmptyContent)
	}
	for i := range s.Letters {
		if s.Letters[i].Version == version {
			s.Letters[i].Content = content
			s.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("letter %d: %w", version, ErrNoArtifact)
}

// Letter returns the letter with the given version.
func (s *Session) Letter(version int) (types.CoverLetter, bool) {
	for _, l := range s.Letters {
		if l.Version == version {
			return l, true
		}
	}
	return types.CoverLetter{}, false
}

// Store persists sessions for a limited time. Get and Delete return
// ErrNotFound for unknown or expired ids.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Store kinds accepted by Open.
const (
	KindMemory = "memory"
	KindRedis  = "redis"
)

// Open creates the store of the given kind.
func Open(ctx context.Context, kind, redisURL string, ttl time.Duration) (Store, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(ttl), nil
	case KindRedis:
		return NewRedisStore(ctx, redisURL, ttl)
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
}
