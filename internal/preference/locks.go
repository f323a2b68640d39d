package preference

import "sync"

const lockStripes = 32

// userLocks serializes balance-mutating operations per user. Commits touch
// both the token balance and the preference set, so two concurrent commits
// for the same user must not interleave.
type userLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *userLocks) lock(userID int64) *sync.Mutex {
	m := &l.stripes[uint64(userID)%lockStripes]
	m.Lock()
	return m
}
