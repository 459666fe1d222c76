package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/storage"
)

func day(d int) time.Time {
	return time.Date(2026, time.April, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectStoreCRUD(t *testing.T) {
	gateway, _ := newTestGateway(t)
	s := NewProjectStore(gateway, zap.NewNop())
	defer s.Close()

	p1 := models.NewProject("Alpha", "", day(1), day(10))
	p2 := models.NewProject("Beta", "", day(5), day(20))
	s.Create(p1)
	s.Create(p2)

	got := s.Projects()
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name, "insertion order preserved")

	p1.Name = "Alpha v2"
	s.Update(p1)
	assert.Equal(t, "Alpha v2", s.Projects()[0].Name)

	s.Delete(p1.ID)
	got = s.Projects()
	require.Len(t, got, 1)
	assert.Equal(t, p2.ID, got[0].ID)
}

func TestProjectStoreStaleIDsAreNoOps(t *testing.T) {
	gateway, _ := newTestGateway(t)
	s := NewProjectStore(gateway, zap.NewNop())
	defer s.Close()

	p := models.NewProject("Alpha", "", day(1), day(10))
	s.Create(p)

	ghost := models.NewProject("Ghost", "", day(1), day(2))
	s.Update(ghost)
	s.AddMessage(ghost.ID, models.NewChatMessage(ghost.ID, uuid.New(), "hello"))
	s.Delete(ghost.ID)
	s.Delete(p.ID, p.ID)

	assert.Empty(t, s.Projects())
	s.Delete(p.ID) // deleting again is safe
}

func TestProjectStoreSubscribe(t *testing.T) {
	gateway, _ := newTestGateway(t)
	s := NewProjectStore(gateway, zap.NewNop())
	defer s.Close()

	var published [][]models.Project
	s.Subscribe(func(projects []models.Project) {
		published = append(published, projects)
	})
	require.Len(t, published, 1, "subscriber receives current state immediately")
	assert.Empty(t, published[0])

	p := models.NewProject("Alpha", "", day(1), day(10))
	s.Create(p)
	p.Summary = "updated"
	s.Update(p)

	require.Len(t, published, 3)
	assert.Equal(t, "updated", published[2][0].Summary)
}

func TestProjectStoreAddMessage(t *testing.T) {
	gateway, _ := newTestGateway(t)
	s := NewProjectStore(gateway, zap.NewNop())
	defer s.Close()

	p := models.NewProject("Alpha", "", day(1), day(10))
	s.Create(p)

	author := uuid.New()
	s.AddMessage(p.ID, models.NewChatMessage(p.ID, author, "first"))
	s.AddMessage(p.ID, models.NewChatMessage(p.ID, author, "second"))

	msgs := s.Projects()[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "second", msgs[1].Body)
}

func TestProjectStoreActive(t *testing.T) {
	gateway, _ := newTestGateway(t)
	s := NewProjectStore(gateway, zap.NewNop())
	defer s.Close()

	s.Create(models.NewProject("Past", "", day(1), day(2)))
	s.Create(models.NewProject("Current", "", day(1), day(20)))
	s.Create(models.NewProject("Future", "", day(25), day(28)))

	active := s.Active(day(10))
	require.Len(t, active, 1)
	assert.Equal(t, "Current", active[0].Name)

	edge := s.Active(day(20)) // span includes both endpoints
	require.Len(t, edge, 1)
	assert.Equal(t, "Current", edge[0].Name)
}

func TestProjectStoreDebouncedPersistence(t *testing.T) {
	gateway, backend := newTestGateway(t)
	s := NewProjectStore(gateway, zap.NewNop(), WithDebounce(20*time.Millisecond))

	for i := 0; i < 5; i++ {
		s.Create(models.NewProject("Alpha", "", day(1), day(10)))
	}
	assert.Equal(t, 0, backend.count(storage.SlotProjects), "no write inside the quiet window")

	require.Eventually(t, func() bool {
		return backend.count(storage.SlotProjects) == 1
	}, time.Second, 5*time.Millisecond, "burst coalesces into one write")

	var persisted []models.Project
	require.NoError(t, json.Unmarshal(backend.last(storage.SlotProjects), &persisted))
	assert.Len(t, persisted, 5, "the write carries the latest state")
}

func TestProjectStoreCloseFlushesPendingWrite(t *testing.T) {
	gateway, backend := newTestGateway(t)
	s := NewProjectStore(gateway, zap.NewNop(), WithDebounce(time.Hour))

	s.Create(models.NewProject("Alpha", "", day(1), day(10)))
	assert.Equal(t, 0, backend.count(storage.SlotProjects))

	s.Close()
	assert.Equal(t, 1, backend.count(storage.SlotProjects))
}

func TestProjectStoreLoadsPersistedState(t *testing.T) {
	gateway := newFileGateway(t)

	first := NewProjectStore(gateway, zap.NewNop(), WithDebounce(time.Millisecond))
	p := models.NewProject("Alpha", "summary", day(1), day(10))
	first.Create(p)
	first.Close()

	second := NewProjectStore(gateway, zap.NewNop())
	got := second.Projects()
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
	assert.Equal(t, "summary", got[0].Summary)
}
