package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/storage"
)

// ProjectStore owns the canonical project collection. Mutations are applied
// in memory, republished to subscribers synchronously, and persisted by a
// debounced background write. Persistence is best-effort: a failed write is
// logged and swallowed, never surfaced.
type ProjectStore struct {
	mu       sync.Mutex
	projects []models.Project
	subs     []func([]models.Project)

	gateway *storage.Gateway
	saver   *saver
	log     *zap.Logger
}

// NewProjectStore loads the persisted collection, falling back to an empty
// one if the document is missing or corrupt.
func NewProjectStore(gateway *storage.Gateway, log *zap.Logger, opts ...Option) *ProjectStore {
	o := buildOptions(opts)
	return &ProjectStore{
		projects: storage.LoadOrDefault(gateway, storage.SlotProjects, []models.Project{}),
		gateway:  gateway,
		saver:    newSaver(o.debounce),
		log:      log.Named("projects"),
	}
}

// Subscribe registers fn to be called with the full collection on every
// mutation, in mutation order. fn receives the current collection
// immediately. The snapshot is shared; treat it as read-only, and do not
// call back into the store from fn.
func (s *ProjectStore) Subscribe(fn func([]models.Project)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	fn(s.snapshotLocked())
}

// Projects returns a snapshot of the collection in insertion order.
func (s *ProjectStore) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Create appends a project to the collection.
func (s *ProjectStore) Create(p models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(s.projects, p)
	s.changedLocked()
}

// Update replaces the project with the same id in place. An unknown id is a
// silent no-op.
func (s *ProjectStore) Update(p models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			s.changedLocked()
			return
		}
	}
}

// Delete removes the projects with the given ids. Unmatched ids are ignored,
// so deleting twice is safe. Tasks referencing a deleted project are not
// touched.
func (s *ProjectStore) Delete(ids ...uuid.UUID) {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.projects[:0]
	for _, p := range s.projects {
		if _, ok := drop[p.ID]; !ok {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(s.projects) {
		return
	}
	s.projects = kept
	s.changedLocked()
}

// AddMessage appends a chat message to the project's embedded message list.
// An unknown project id is a silent no-op.
func (s *ProjectStore) AddMessage(projectID uuid.UUID, msg models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == projectID {
			s.projects[i].Messages = append(s.projects[i].Messages, msg)
			s.changedLocked()
			return
		}
	}
}

// Active returns the projects whose span contains ref.
func (s *ProjectStore) Active(ref time.Time) []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []models.Project
	for _, p := range s.projects {
		if !p.StartDate.After(ref) && !p.EndDate.Before(ref) {
			active = append(active, p)
		}
	}
	return active
}

// Close flushes any pending write.
func (s *ProjectStore) Close() {
	s.saver.flush()
}

// changedLocked republishes the collection and schedules a debounced save.
// Must be called with the lock held.
func (s *ProjectStore) changedLocked() {
	snapshot := s.snapshotLocked()
	s.saver.trigger(func() {
		if err := storage.Save(s.gateway, storage.SlotProjects, snapshot); err != nil {
			s.log.Warn("save failed", zap.Error(err))
		}
	})
	for _, fn := range s.subs {
		fn(snapshot)
	}
}

func (s *ProjectStore) snapshotLocked() []models.Project {
	snapshot := make([]models.Project, len(s.projects))
	copy(snapshot, s.projects)
	return snapshot
}
