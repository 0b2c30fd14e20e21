package store

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"soundcircle/shared/go/models"
)

var (
	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a duplicate unique field such as a username.
	ErrConflict = errors.New("already exists")
	// ErrUnauthorized indicates a failed credential check or a missing identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller may not act on the target entity.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidOperation indicates a semantically invalid request, e.g. following yourself.
	ErrInvalidOperation = errors.New("invalid operation")
)

// Sequence hands out identifiers. Every table of a Store draws from the same
// Sequence, so a user, a playlist and a comment never share an id.
type Sequence struct {
	last atomic.Int64
}

// NewSequence returns a Sequence whose first identifier is start.
func NewSequence(start int64) *Sequence {
	seq := &Sequence{}
	seq.last.Store(start - 1)
	return seq
}

// Next returns the next identifier.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Store keeps users, playlists, comments and follows in memory.
//
// A single lock covers every table: id assignment and insertion happen under
// the write lock, so concurrent creators never observe skipped or duplicate ids.
// Records are copied on the way in and on the way out.
type Store struct {
	mu    sync.RWMutex
	seq   *Sequence
	now   func() time.Time
	epoch string

	lastCommentAt time.Time

	users     map[int64]*models.User
	playlists map[int64]*models.Playlist
	comments  map[int64]*models.Comment
	follows   map[int64]*models.Follow
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces the clock used to stamp comments.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithSequence replaces the identifier source.
func WithSequence(seq *Sequence) Option {
	return func(s *Store) {
		s.seq = seq
	}
}

// New returns an empty Store whose identifiers start at 1.
func New(opts ...Option) *Store {
	s := &Store{
		seq:       NewSequence(1),
		now:       func() time.Time { return time.Now().UTC() },
		epoch:     uuid.NewString(),
		users:     make(map[int64]*models.User),
		playlists: make(map[int64]*models.Playlist),
		comments:  make(map[int64]*models.Comment),
		follows:   make(map[int64]*models.Follow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Epoch identifies this Store instance. Identifiers handed out by one Store
// mean nothing to another, even when the numbers match.
func (s *Store) Epoch() string {
	return s.epoch
}
