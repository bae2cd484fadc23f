package services

import "sync"

// ClubLocks hands out one RWMutex per club. Writes to a club's ledger,
// roster or tournaments take the write lock; reads take the read lock.
type ClubLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func NewClubLocks() *ClubLocks {
	return &ClubLocks{locks: make(map[string]*sync.RWMutex)}
}

func (l *ClubLocks) For(clubCode string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[clubCode]
	if !ok {
		lock = &sync.RWMutex{}
		l.locks[clubCode] = lock
	}
	return lock
}
