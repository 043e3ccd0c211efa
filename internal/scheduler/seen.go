package scheduler

// seenSet is a fixed-capacity id set with FIFO eviction. The scheduler uses
// it to avoid re-scoring items it already decided on; bounding it keeps the
// process from growing without limit over its lifetime. Evicting an id only
// costs a re-score if the source ever re-emits it, never correctness: the
// store still rejects duplicates by id. Not safe for concurrent use; the
// scheduler guards it with its own mutex.
type seenSet struct {
	capacity int
	ids      map[string]struct{}
	ring     []string
	head     int
}

func newSeenSet(capacity int) *seenSet {
	if capacity <= 0 {
		capacity = 1
	}
	return &seenSet{
		capacity: capacity,
		ids:      make(map[string]struct{}, capacity),
		ring:     make([]string, 0, capacity),
	}
}

func (s *seenSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add marks the id as seen, evicting the oldest id once the capacity is
// reached. Adding a present id is a no-op; it does not refresh its age.
func (s *seenSet) Add(id string) {
	if s.Has(id) {
		return
	}
	if len(s.ring) < s.capacity {
		s.ring = append(s.ring, id)
	} else {
		delete(s.ids, s.ring[s.head])
		s.ring[s.head] = id
		s.head = (s.head + 1) % s.capacity
	}
	s.ids[id] = struct{}{}
}

func (s *seenSet) Len() int {
	return len(s.ids)
}
