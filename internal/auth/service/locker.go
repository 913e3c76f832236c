package service

import (
	"context"
	"sync"
)

// OwnerLocker serializes the revoke-then-save sequence per owner so that
// concurrent logins or refreshes for one user cannot leave two live refresh
// tokens behind.
type OwnerLocker interface {
	// Lock blocks until the owner's lock is held or ctx is done. The returned
	// func releases the lock and is safe to call more than once.
	Lock(ctx context.Context, ownerID string) (unlock func(), err error)
}

// LocalLocker is an in-process keyed mutex. Entries are dropped once nobody
// holds or waits on them.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*ownerLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, ownerID string) (func(), error) {
	l.mu.Lock()
	ol, ok := l.locks[ownerID]
	if !ok {
		ol = &ownerLock{sem: make(chan struct{}, 1)}
		l.locks[ownerID] = ol
	}
	ol.refs++
	l.mu.Unlock()

	select {
	case ol.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(ownerID, ol)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-ol.sem
			l.release(ownerID, ol)
		})
	}, nil
}

func (l *LocalLocker) release(ownerID string, ol *ownerLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ol.refs--
	if ol.refs == 0 {
		delete(l.locks, ownerID)
	}
}

// size reports the number of tracked owners.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
