package quadtree

// bitSet is a dense visited-set over element indices, used to de-duplicate
// query results. Elements are referenced from every leaf their bounding box
// intersects, so the same index can surface several times in one traversal.
type bitSet struct {
	buckets []uint64
}

func newBitSet(capacity int) *bitSet {
	if capacity < 1 {
		capacity = 1
	}
	return &bitSet{buckets: make([]uint64, (capacity>>6)+1)}
}

func (bs *bitSet) add(n int32) {
	i := uint32(n) >> 6
	if i >= uint32(len(bs.buckets)) {
		grown := make([]uint64, i+1)
		copy(grown, bs.buckets)
		bs.buckets = grown
	}
	bs.buckets[i] |= 1 << (uint32(n) & 63)
}

func (bs *bitSet) has(n int32) bool {
	i := uint32(n) >> 6
	if i >= uint32(len(bs.buckets)) {
		return false
	}
	return bs.buckets[i]&(1<<(uint32(n)&63)) != 0
}

func (bs *bitSet) clear() {
	for i := range bs.buckets {
		bs.buckets[i] = 0
	}
}
