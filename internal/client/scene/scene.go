// Package scene is the renderable-scene collaborator of a drawing client.
package scene

import (
	"github.com/dkeye/Sketch/internal/domain"
)

// Scene is an ordered set of drawable records, bottom to top. Implementations
// may be backed by a real renderer; they are driven from one goroutine.
type Scene interface {
	Get(id domain.ObjectID) (domain.Object, bool)
	// Objects returns copies in paint order, bottom first.
	Objects() []domain.Object
	Len() int
	// Add puts obj on top, replacing any record with the same id.
	Add(obj domain.Object)
	// Merge applies a field-level merge onto the record with id.
	Merge(id domain.ObjectID, patch domain.Object) bool
	Remove(id domain.ObjectID) bool
	Clear()
}

// Hooks mimic renderer events. They fire after the change is applied.
type Hooks struct {
	Added    func(obj domain.Object)
	Modified func(obj domain.Object)
	Removed  func(id domain.ObjectID)
}

// Memory is an in-process Scene.
type Memory struct {
	order   []domain.ObjectID
	objects map[domain.ObjectID]domain.Object
	hooks   Hooks
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[domain.ObjectID]domain.Object)}
}

// SetHooks installs renderer-style change callbacks.
func (m *Memory) SetHooks(h Hooks) { m.hooks = h }

func (m *Memory) Get(id domain.ObjectID) (domain.Object, bool) {
	o, ok := m.objects[id]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

func (m *Memory) Objects() []domain.Object {
	out := make([]domain.Object, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.objects[id].Clone())
	}
	return out
}

func (m *Memory) Len() int { return len(m.order) }

func (m *Memory) Add(obj domain.Object) {
	id := obj.ID()
	if _, ok := m.objects[id]; ok {
		m.unlink(id)
	}
	m.objects[id] = obj.Clone()
	m.order = append(m.order, id)
	if m.hooks.Added != nil {
		m.hooks.Added(obj.Clone())
	}
}

func (m *Memory) Merge(id domain.ObjectID, patch domain.Object) bool {
	o, ok := m.objects[id]
	if !ok {
		return false
	}
	o.Merge(patch)
	if m.hooks.Modified != nil {
		m.hooks.Modified(o.Clone())
	}
	return true
}

func (m *Memory) Remove(id domain.ObjectID) bool {
	if _, ok := m.objects[id]; !ok {
		return false
	}
	m.unlink(id)
	delete(m.objects, id)
	if m.hooks.Removed != nil {
		m.hooks.Removed(id)
	}
	return true
}

func (m *Memory) Clear() {
	ids := m.order
	m.order = nil
	m.objects = make(map[domain.ObjectID]domain.Object)
	if m.hooks.Removed != nil {
		for _, id := range ids {
			m.hooks.Removed(id)
		}
	}
}

func (m *Memory) unlink(id domain.ObjectID) {
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
