package store

import (
	"context"
	"sync"
)

// MemKV is an in-process KV. Fail, when set, is returned by every operation;
// it lets callers exercise storage failures.
type MemKV struct {
	mu   sync.Mutex
	m    map[string]string
	Fail error
}

func NewMemKV() *MemKV {
	return &MemKV{m: map[string]string{}}
}

func (k *MemKV) Location() string { return "" }

func (k *MemKV) SetFail(err error) {
	k.mu.Lock()
	k.Fail = err
	k.mu.Unlock()
}

func (k *MemKV) Get(_ context.Context, key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.Fail != nil {
		return "", false, k.Fail
	}
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *MemKV) Set(_ context.Context, key, val string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.Fail != nil {
		return k.Fail
	}
	if k.m == nil {
		k.m = map[string]string{}
	}
	k.m[key] = val
	return nil
}

func (k *MemKV) Remove(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.Fail != nil {
		return k.Fail
	}
	delete(k.m, key)
	return nil
}
