package storage

import (
	"context"
	"maps"
	"sync"
)

// Object is a stored blob as held by MemoryContainer.
type Object struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// MemoryContainer keeps objects in process memory. Used for development
// (RAW_IMAGE_STORAGE=memory://) and tests.
type MemoryContainer struct {
	mu        sync.RWMutex
	name      string
	created   bool
	creations int
	objects   map[string]Object
}

func NewMemoryContainer(name string) *MemoryContainer {
	return &MemoryContainer{
		name:    name,
		objects: make(map[string]Object),
	}
}

func (m *MemoryContainer) Name() string {
	return m.name
}

func (m *MemoryContainer) CreateIfNotExists(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.created {
		m.created = true
		m.creations++
	}
	return nil
}

func (m *MemoryContainer) Put(ctx context.Context, name string, data []byte, contentType string, metadata map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.created {
		return ErrContainerNotFound
	}
	m.objects[name] = Object{
		Name:        name,
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
		Metadata:    maps.Clone(metadata),
	}
	return nil
}

func (m *MemoryContainer) Ping(context.Context) error {
	return nil
}

// Creations reports how many times the container was actually created.
func (m *MemoryContainer) Creations() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creations
}

func (m *MemoryContainer) Get(name string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[name]
	return obj, ok
}

func (m *MemoryContainer) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
