package bucketing

import (
	"hash"
	"sync"

	"github.com/spaolacci/murmur3"
)

// Manager assigns participants to stable partition buckets so a single
// Scylla partition never accumulates the whole event's registrations.
type Manager struct {
	participantBuckets int
	hasherPool         sync.Pool
}

const DefaultParticipantBuckets = 16

func NewManager(participantBuckets int) *Manager {
	if participantBuckets <= 0 {
		participantBuckets = DefaultParticipantBuckets
	}
	m := &Manager{participantBuckets: participantBuckets}
	m.hasherPool = sync.Pool{
		New: func() interface{} {
			return murmur3.New64()
		},
	}
	return m
}

// ParticipantBucket returns the consistent bucket for a participant id
// (0 to participantBuckets-1).
func (m *Manager) ParticipantBucket(id string) int {
	return int(m.hash(id) % uint64(m.participantBuckets))
}

func (m *Manager) ParticipantBuckets() int {
	return m.participantBuckets
}

func (m *Manager) hash(key string) uint64 {
	hasher := m.hasherPool.Get().(hash.Hash64)
	defer m.hasherPool.Put(hasher)

	hasher.Reset()
	hasher.Write([]byte(key))
	return hasher.Sum64()
}
