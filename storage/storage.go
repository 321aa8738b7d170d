// Package storage provides the durable single-slot blob boundary the
// store persists its state through.
package storage

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

// ErrNotFound is reported by Load when the slot has never been written.
var ErrNotFound = errors.New("not found")

// Blob is a single durable key-value slot.
type Blob interface {
	// Load returns the last saved blob or ErrNotFound.
	Load(ctx context.Context) ([]byte, error)
	// Save durably overwrites the slot.
	Save(ctx context.Context, data []byte) error
}

// Memory is an ephemeral in-process Blob for tests and demo runs.
type Memory struct {
	lock sync.Mutex
	data []byte
	set  bool
}

// NewMemory creates an in-memory blob. A nil initial value means the slot
// starts empty.
func NewMemory(initial []byte) *Memory {
	m := &Memory{}
	if initial != nil {
		m.data = bytes.Clone(initial)
		m.set = true
	}
	return m
}

func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if !m.set {
		return nil, ErrNotFound
	}
	return bytes.Clone(m.data), nil
}

func (m *Memory) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.data = bytes.Clone(data)
	m.set = true
	return nil
}
