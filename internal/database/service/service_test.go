package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/internal/testutil"
)

// memoryImages keeps saved images in a map.
type memoryImages struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	onSave  func()
}

func newMemoryImages() *memoryImages {
	return &memoryImages{objects: map[string][]byte{}}
}

func (m *memoryImages) Save(_ context.Context, key string, content io.Reader, _ int64, _ string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, content); err != nil {
		return err
	}
	if m.onSave != nil {
		m.onSave()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return nil
}

func (m *memoryImages) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryImages) URL(key string) string {
	return "http://media.test/" + key
}

func (m *memoryImages) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// inline runs background tasks before Submit returns.
type inline struct{}

func (inline) Submit(task func(ctx context.Context)) {
	task(context.Background())
}

type fixture struct {
	db     *gorm.DB
	store  repository.Store
	images *memoryImages
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	return &fixture{db: db, store: repository.NewStore(db), images: newMemoryImages()}
}

func (f *fixture) recipes() RecipeService {
	return NewRecipeService(f.store, f.images, inline{}, testutil.Logger())
}

func ptr[T any](v T) *T {
	return &v
}

func requireFieldError(t *testing.T, err error, field, msg string) {
	t.Helper()
	verr, ok := AsValidationError(err)
	require.True(t, ok, "expected validation error, got %v", err)
	require.Contains(t, verr.Fields[field], msg, "fields: %v", verr.Fields)
}
