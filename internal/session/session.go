package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"placeplanner/internal/projection"
	"placeplanner/shared/go/models"
)

// Remote is the authoritative store of saved places.
type Remote interface {
	ListUserPlaces(ctx context.Context, scope models.Scope) ([]models.UserPlace, error)
	// CreateUserPlace is idempotent on a duplicate id.
	CreateUserPlace(ctx context.Context, scope models.Scope, place models.Place) (models.UserPlace, error)
	PatchUserPlace(ctx context.Context, scope models.Scope, id string, patch models.UserPlacePatch) (models.UserPlace, error)
	DeleteUserPlace(ctx context.Context, scope models.Scope, id string) error
}

// Phase is the lifecycle position of a Session.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseLoaded
	// PhasePending is Loaded with at least one unconfirmed mutation.
	PhasePending
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePending:
		return "pending"
	default:
		return "loaded"
	}
}

// Session holds one collection and reconciles optimistic mutations with a
// Remote. Mutations update local state before their request is sent; a
// failed request triggers a full resync once every in-flight mutation has
// settled. Concurrent failures share one resync.
type Session struct {
	remote   Remote
	log      zerolog.Logger
	now      func() time.Time
	onChange func(State)

	mu       sync.Mutex
	scope    models.Scope
	state    State
	gen      uint64
	inflight int
	// seq counts mutations issued; a resync whose list raced a newer
	// mutation is discarded and fetched again.
	seq       uint64
	dirty     bool
	resyncing bool

	loads singleflight.Group
	wg    sync.WaitGroup
}

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the logger used for drift and resync messages.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithClock overrides the clock used for createdAt of optimistic adds.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithOnChange registers fn to receive every new state. fn runs without the
// session lock held.
func WithOnChange(fn func(State)) Option {
	return func(s *Session) { s.onChange = fn }
}

// New returns a Session for scope in the loading state.
func New(remote Remote, scope models.Scope, opts ...Option) *Session {
	s := &Session{
		remote: remote,
		log:    zerolog.Nop(),
		now:    time.Now,
		scope:  scope,
		state:  State{Loading: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scope returns the identity the session currently serves.
func (s *Session) Scope() models.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Phase reports whether the session is loading, settled or waiting on the
// remote.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state.Loading:
		return PhaseLoading
	case s.inflight > 0 || s.resyncing:
		return PhasePending
	default:
		return PhaseLoaded
	}
}

// Places returns a copy of the current collection in stored order.
func (s *Session) Places() []models.UserPlace {
	st := s.State()
	out := make([]models.UserPlace, len(st.Places))
	for i, up := range st.Places {
		out[i] = up.Clone()
	}
	return out
}

// View projects the current collection through filter and sort.
func (s *Session) View(filter projection.FilterState, sort projection.SortState) []models.UserPlace {
	return projection.Project(s.State().Places, filter, sort)
}

// Load fetches the collection. On failure the session stays loading and the
// error is returned so the caller can retry. Concurrent calls share one
// request.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = Reduce(s.state, Load{})
	scope, gen, seq, st := s.scope, s.gen, s.seq, s.state
	s.mu.Unlock()
	s.notify(st)

	v, err, _ := s.loads.Do(scope.Key()+"@"+strconv.FormatUint(gen, 10), func() (any, error) {
		return s.remote.ListUserPlaces(ctx, scope)
	})
	if err != nil {
		s.log.Warn().Err(err).Str("scope", scope.Key()).Msg("load failed")
		return err
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug().Msg("dropping response for a previous scope")
		return nil
	}
	s.state = Reduce(s.state, Sync{Places: v.([]models.UserPlace)})
	if seq != s.seq || s.inflight > 0 {
		s.dirty = true
		s.startResyncLocked(context.WithoutCancel(ctx))
	}
	st = s.state
	s.mu.Unlock()
	s.notify(st)
	return nil
}

// Reset clears the collection. Responses to requests issued before the
// reset are ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	s.gen++
	s.dirty = false
	s.state = Reduce(s.state, Reset{})
	st := s.state
	s.mu.Unlock()
	s.notify(st)
}

// SwitchScope resets the session and serves scope from now on. Call Load to
// fetch the new collection.
func (s *Session) SwitchScope(scope models.Scope) {
	s.mu.Lock()
	s.gen++
	s.dirty = false
	s.scope = scope
	s.state = Reduce(s.state, Reset{})
	st := s.state
	s.mu.Unlock()
	s.notify(st)
}

// Add saves place locally and creates it remotely. It reports false when
// the place was already present, in which case nothing is sent.
func (s *Session) Add(ctx context.Context, place models.Place) bool {
	s.mu.Lock()
	if s.state.Has(place.ID) {
		s.mu.Unlock()
		return false
	}
	s.state = Reduce(s.state, Add{Place: place, Now: s.now()})
	scope, gen, st := s.scope, s.gen, s.state
	s.inflight++
	s.seq++
	s.mu.Unlock()
	s.notify(st)

	s.send(ctx, scope, gen, "create", func(ctx context.Context) error {
		_, err := s.remote.CreateUserPlace(ctx, scope, place)
		return err
	})
	return true
}

// Remove drops the place locally and deletes it remotely.
func (s *Session) Remove(ctx context.Context, id string) {
	s.mutate(ctx, id, Remove{ID: id}, "delete", func(ctx context.Context, scope models.Scope, _ models.UserPlace) error {
		return s.remote.DeleteUserPlace(ctx, scope, id)
	})
}

// ToggleStatus flips want/visited locally and stores the new status.
func (s *Session) ToggleStatus(ctx context.Context, id string) {
	s.mutate(ctx, id, ToggleStatus{ID: id}, "patch status", func(ctx context.Context, scope models.Scope, up models.UserPlace) error {
		status := up.Status
		_, err := s.remote.PatchUserPlace(ctx, scope, id, models.UserPlacePatch{Status: &status})
		return err
	})
}

// ToggleFavorite flips the favorite flag locally and stores the new value.
func (s *Session) ToggleFavorite(ctx context.Context, id string) {
	s.mutate(ctx, id, ToggleFavorite{ID: id}, "patch favorite", func(ctx context.Context, scope models.Scope, up models.UserPlace) error {
		fav := up.IsFavorite
		_, err := s.remote.PatchUserPlace(ctx, scope, id, models.UserPlacePatch{IsFavorite: &fav})
		return err
	})
}

// UpdateMeta merges patch into the place's meta locally and remotely.
func (s *Session) UpdateMeta(ctx context.Context, id string, patch models.MetaPatch) {
	s.mutate(ctx, id, UpdateMeta{ID: id, Patch: patch}, "patch meta", func(ctx context.Context, scope models.Scope, _ models.UserPlace) error {
		p := patch
		_, err := s.remote.PatchUserPlace(ctx, scope, id, models.UserPlacePatch{Meta: &p})
		return err
	})
}

// Wait blocks until every request started so far, including resyncs, has
// finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// mutate applies a to an existing place and sends the request built by
// call. Unknown ids are ignored without contacting the remote.
func (s *Session) mutate(ctx context.Context, id string, a Action, op string, call func(context.Context, models.Scope, models.UserPlace) error) {
	s.mu.Lock()
	if !s.state.Has(id) {
		s.mu.Unlock()
		s.log.Debug().Str("id", id).Str("op", op).Msg("ignoring mutation of unknown place")
		return
	}
	s.state = Reduce(s.state, a)
	updated, _ := s.state.Find(id)
	scope, gen, st := s.scope, s.gen, s.state
	s.inflight++
	s.seq++
	s.mu.Unlock()
	s.notify(st)

	s.send(ctx, scope, gen, op, func(ctx context.Context) error {
		return call(ctx, scope, updated)
	})
}

// send runs call in the background. The request outlives the caller's
// context cancellation.
func (s *Session) send(ctx context.Context, scope models.Scope, gen uint64, op string, call func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := call(ctx)
		if err != nil {
			s.log.Warn().Err(err).Str("scope", scope.Key()).Str("op", op).Msg("mutation failed, resyncing")
		}
		s.done(ctx, gen, err != nil)
	}()
}

func (s *Session) done(ctx context.Context, gen uint64, failed bool) {
	s.mu.Lock()
	s.inflight--
	if failed && gen == s.gen {
		s.dirty = true
	}
	s.startResyncLocked(ctx)
	st := s.state
	s.mu.Unlock()
	s.notify(st)
}

// startResyncLocked starts a resync when one is owed and no mutation is in
// flight, so the fetched list reflects every request sent so far. s.mu must
// be held.
func (s *Session) startResyncLocked(ctx context.Context) {
	if !s.dirty || s.resyncing || s.inflight > 0 {
		return
	}
	s.resyncing = true
	s.wg.Add(1)
	go s.resync(ctx, s.scope, s.gen, s.seq)
}

// resync replaces local state with the remote list. The result is dropped
// when the scope changed or a mutation was issued while the list was in
// flight; in the latter case another resync follows once it settles.
func (s *Session) resync(ctx context.Context, scope models.Scope, gen, seq uint64) {
	defer s.wg.Done()
	places, err := s.remote.ListUserPlaces(ctx, scope)

	s.mu.Lock()
	s.resyncing = false
	switch {
	case gen != s.gen:
		s.log.Debug().Msg("dropping response for a previous scope")
	case err != nil:
		s.log.Warn().Err(err).Str("scope", scope.Key()).Msg("resync failed")
		s.dirty = false
	case seq != s.seq:
		s.log.Debug().Str("scope", scope.Key()).Msg("list raced a newer mutation, resyncing again")
	default:
		s.dirty = false
		s.state = Reduce(s.state, Sync{Places: places})
	}
	s.startResyncLocked(ctx)
	st := s.state
	s.mu.Unlock()
	s.notify(st)
}

func (s *Session) notify(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}
