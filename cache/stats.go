package cache

import "fmt"

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Len           int
	Capacity      int // per shard; Unbounded when eviction is disabled
	TotalCapacity int
	Hits          uint64
	Misses        uint64
	HitRate       float64
	Evictions     uint64
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	if s.Capacity == Unbounded {
		return fmt.Sprintf("len=%d unbounded hits=%d misses=%d hit_rate=%.2f",
			s.Len, s.Hits, s.Misses, s.HitRate)
	}
	return fmt.Sprintf("len=%d/%d hits=%d misses=%d hit_rate=%.2f evictions=%d",
		s.Len, s.TotalCapacity, s.Hits, s.Misses, s.HitRate, s.Evictions)
}
