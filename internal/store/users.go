package store

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/storage"
)

// UserStore owns the user collection, the singleton settings value, and the
// current-user selector. Users and settings persist as separate documents
// but share one debounce window, so a burst touching either produces a
// single write of both.
type UserStore struct {
	mu        sync.Mutex
	users     []models.UserProfile
	settings  models.AppSettings
	currentID uuid.UUID

	userSubs     []func([]models.UserProfile)
	currentSubs  []func(models.UserProfile)
	settingsSubs []func(models.AppSettings)

	gateway *storage.Gateway
	saver   *saver
	log     *zap.Logger
}

// NewUserStore loads users and settings with defaults on any failure. If no
// profile exists, exactly one default profile is synthesized and selected as
// current.
func NewUserStore(gateway *storage.Gateway, log *zap.Logger, opts ...Option) *UserStore {
	o := buildOptions(opts)
	s := &UserStore{
		users:    storage.LoadOrDefault(gateway, storage.SlotUsers, []models.UserProfile{}),
		settings: storage.LoadOrDefault(gateway, storage.SlotSettings, models.DefaultSettings()),
		gateway:  gateway,
		saver:    newSaver(o.debounce),
		log:      log.Named("users"),
	}

	s.mu.Lock()
	if len(s.users) == 0 {
		def := models.NewUserProfile("You", "you@example.com")
		s.users = []models.UserProfile{def}
		s.scheduleSaveLocked()
	}
	s.currentID = s.users[0].ID
	s.mu.Unlock()

	return s
}

// SubscribeUsers registers fn for the user collection; it receives the
// current collection immediately and on every mutation thereafter.
func (s *UserStore) SubscribeUsers(fn func([]models.UserProfile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userSubs = append(s.userSubs, fn)
	fn(s.usersSnapshotLocked())
}

// SubscribeCurrentUser registers fn for the current profile; it receives the
// current profile immediately, on every user mutation, and when the
// selection changes.
func (s *UserStore) SubscribeCurrentUser(fn func(models.UserProfile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentSubs = append(s.currentSubs, fn)
	if current, ok := s.currentLocked(); ok {
		fn(current)
	}
}

// SubscribeSettings registers fn for the settings value; it receives the
// current value immediately and on every change thereafter.
func (s *UserStore) SubscribeSettings(fn func(models.AppSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settingsSubs = append(s.settingsSubs, fn)
	fn(s.settings)
}

// Users returns a snapshot of the user collection.
func (s *UserStore) Users() []models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usersSnapshotLocked()
}

// Settings returns the current settings value.
func (s *UserStore) Settings() models.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// CurrentUser returns the selected profile and whether one is selected.
func (s *UserStore) CurrentUser() (models.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *UserStore) currentLocked() (models.UserProfile, bool) {
	for _, u := range s.users {
		if u.ID == s.currentID {
			return u, true
		}
	}
	return models.UserProfile{}, false
}

// SetCurrentUser selects the profile with the given id. An unknown id is a
// no-op.
func (s *UserStore) SetCurrentUser(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			s.currentID = id
			for _, fn := range s.currentSubs {
				fn(u)
			}
			return
		}
	}
}

// AddUser appends a profile to the collection.
func (s *UserStore) AddUser(u models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
	s.usersChangedLocked()
}

// SaveUser replaces the profile with the same id. An unknown id is a silent
// no-op.
func (s *UserStore) SaveUser(u models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == u.ID {
			s.users[i] = u
			s.usersChangedLocked()
			return
		}
	}
}

// RemoveUsers deletes the profiles with the given ids. Unmatched ids are
// ignored.
func (s *UserStore) RemoveUsers(ids ...uuid.UUID) {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.users[:0]
	for _, u := range s.users {
		if _, ok := drop[u.ID]; !ok {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(s.users) {
		return
	}
	s.users = kept
	s.usersChangedLocked()
}

// UpdateSettings overwrites the settings value.
func (s *UserStore) UpdateSettings(settings models.AppSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.scheduleSaveLocked()
	for _, fn := range s.settingsSubs {
		fn(settings)
	}
}

// Close flushes any pending write.
func (s *UserStore) Close() {
	s.saver.flush()
}

func (s *UserStore) usersChangedLocked() {
	snapshot := s.usersSnapshotLocked()
	s.scheduleSaveLocked()
	for _, fn := range s.userSubs {
		fn(snapshot)
	}
	if current, ok := s.currentLocked(); ok {
		for _, fn := range s.currentSubs {
			fn(current)
		}
	}
}

// scheduleSaveLocked persists both documents after the quiet window.
func (s *UserStore) scheduleSaveLocked() {
	users := s.usersSnapshotLocked()
	settings := s.settings
	s.saver.trigger(func() {
		if err := storage.Save(s.gateway, storage.SlotUsers, users); err != nil {
			s.log.Warn("save users failed", zap.Error(err))
		}
		if err := storage.Save(s.gateway, storage.SlotSettings, settings); err != nil {
			s.log.Warn("save settings failed", zap.Error(err))
		}
	})
}

func (s *UserStore) usersSnapshotLocked() []models.UserProfile {
	snapshot := make([]models.UserProfile, len(s.users))
	copy(snapshot, s.users)
	return snapshot
}
