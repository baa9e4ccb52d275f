package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over the stripe indexes [0, stripes)
type ring struct {
	hashRing *treemap.Map

	// minStripe caches the stripe of the min entry in hashRing, which wraps
	// around keys hashing beyond the last entry.
	minStripe int
}

// newRing returns a ring with replicationFactor entries per stripe
func newRing(stripes, replicationFactor uint) *ring {
	hashRing := treemap.NewWith(utils.Int64Comparator)

	indexBytes := make([]byte, 8)
	for stripe := 0; stripe < int(stripes); stripe++ {
		for i := 0; i < int(replicationFactor); i++ {
			binary.LittleEndian.PutUint32(indexBytes[:4], uint32(stripe))
			binary.LittleEndian.PutUint32(indexBytes[4:], uint32(i))

			hash, _ := murmur3.Sum128(indexBytes)
			hashRing.Put(int64(hash), stripe)
		}
	}

	r := &ring{hashRing: hashRing}
	if _, minStripe := hashRing.Min(); minStripe != nil {
		r.minStripe = minStripe.(int)
	}
	return r
}

// shard consistently hashes the key to a stripe
func (r *ring) shard(key []byte) int {
	raw, _ := murmur3.Sum128(key)
	_, stripe := r.hashRing.Ceiling(int64(raw))
	if stripe != nil {
		return stripe.(int)
	}
	return r.minStripe
}
