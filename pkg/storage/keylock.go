package storage

import (
	"sort"
	"sync"
)

// KeyLocker hands out one mutex per key.
type KeyLocker struct {
	globalMu sync.RWMutex
	locks    map[string]*sync.Mutex
}

func NewKeyLocker() *KeyLocker {
	return &KeyLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *KeyLocker) get(key string) *sync.Mutex {
	// Fast path: existing key under read lock
	l.globalMu.RLock()
	mu, ok := l.locks[key]
	l.globalMu.RUnlock()
	if ok {
		return mu
	}

	l.globalMu.Lock()
	defer l.globalMu.Unlock()
	if mu, ok = l.locks[key]; !ok {
		mu = &sync.Mutex{}
		l.locks[key] = mu
	}
	return mu
}

// Lock locks every distinct key in sorted order and returns the unlock func.
func (l *KeyLocker) Lock(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	sort.Strings(uniq)

	held := make([]*sync.Mutex, 0, len(uniq))
	for _, k := range uniq {
		mu := l.get(k)
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
