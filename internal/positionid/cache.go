package positionid

import (
	"sync"

	"github.com/yourusername/heartsgammon/pkg/engine"
)

// DefaultCacheSize is the default number of entries in a MoveCache.
const DefaultCacheSize = 1 << 14

// maxCachedDice is the longest dice list that fits in a cache context.
const maxCachedDice = 4

// cacheEntry stores the legal moves generated for one position, player and
// dice list.
type cacheEntry struct {
	key     Key
	context uint32
	valid   bool
	moves   []engine.Move
}

// cacheNode holds primary and secondary entries for two-way associativity.
type cacheNode struct {
	primary   cacheEntry
	secondary cacheEntry
}

// MoveCache is a thread-safe cache of legal move lists.
// It is two-way set associative with MurmurHash3-style indexing; a miss in
// both ways evicts the secondary entry.
type MoveCache struct {
	entries  []cacheNode
	hashMask uint32

	lookups uint64
	hits    uint64
	adds    uint64

	mu sync.RWMutex
}

// NewMoveCache creates a cache with room for size entries, rounded up to a
// power of two.
func NewMoveCache(size uint32) *MoveCache {
	if size < 2 {
		size = 2
	}
	if size > 1<<24 {
		size = 1 << 24
	}
	p := uint32(2)
	for p < size {
		p <<= 1
	}
	return &MoveCache{
		entries:  make([]cacheNode, p/2),
		hashMask: p/2 - 1,
	}
}

// Flush clears all entries and statistics.
func (c *MoveCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		c.entries[i] = cacheNode{}
	}
	c.lookups = 0
	c.hits = 0
	c.adds = 0
}

// moveContext packs the player and up to four dice into one word.
// Bit 0 is the player, then three bits per die.
func moveContext(p engine.Player, dice []int) (uint32, bool) {
	if !p.Valid() || len(dice) == 0 || len(dice) > maxCachedDice {
		return 0, false
	}
	ctx := uint32(p) & 1
	for i, d := range dice {
		if d < 1 || d > 6 {
			return 0, false
		}
		ctx |= uint32(d) << (1 + 3*i)
	}
	return ctx, true
}

func (c *MoveCache) hash(key Key, context uint32) uint32 {
	const c1 = 0xcc9e2d51
	const c2 = 0x1b873593

	mix := func(h, k uint32) uint32 {
		k *= c1
		k = (k << 15) | (k >> 17)
		k *= c2
		h ^= k
		h = (h << 13) | (h >> 19)
		return h*5 + 0xe6546b64
	}

	h := uint32(0)
	for i := 0; i < KeyLength; i += 4 {
		k := uint32(key[i]) | uint32(key[i+1])<<8 | uint32(key[i+2])<<16 | uint32(key[i+3])<<24
		h = mix(h, k)
	}
	h = mix(h, context)

	h ^= KeyLength + 4
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16

	return h & c.hashMask
}

func copyMoves(moves []engine.Move) []engine.Move {
	out := make([]engine.Move, len(moves))
	copy(out, moves)
	return out
}

// Lookup returns the cached moves for the position, player and dice.
func (c *MoveCache) Lookup(s engine.State, p engine.Player, dice []int) ([]engine.Move, bool) {
	ctx, ok := moveContext(p, dice)
	if !ok {
		return nil, false
	}
	key := MakeKey(s)
	slot := c.hash(key, ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lookups++
	node := &c.entries[slot]
	if node.primary.valid && node.primary.key == key && node.primary.context == ctx {
		c.hits++
		return copyMoves(node.primary.moves), true
	}
	if node.secondary.valid && node.secondary.key == key && node.secondary.context == ctx {
		c.hits++
		node.primary, node.secondary = node.secondary, node.primary
		return copyMoves(node.primary.moves), true
	}
	return nil, false
}

// Add stores moves for the position, player and dice. Dice lists that do not
// fit a cache context are ignored.
func (c *MoveCache) Add(s engine.State, p engine.Player, dice []int, moves []engine.Move) {
	ctx, ok := moveContext(p, dice)
	if !ok {
		return
	}
	key := MakeKey(s)
	slot := c.hash(key, ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	node := &c.entries[slot]
	node.secondary = node.primary
	node.primary = cacheEntry{key: key, context: ctx, valid: true, moves: copyMoves(moves)}
	c.adds++
}

// LegalMoves returns engine.LegalMovesForPlayer, served from the cache when
// possible. A nil cache always generates.
func (c *MoveCache) LegalMoves(s engine.State, p engine.Player, dice []int) []engine.Move {
	if c == nil {
		return engine.LegalMovesForPlayer(s, p, dice)
	}
	if moves, ok := c.Lookup(s, p, dice); ok {
		return moves
	}
	moves := engine.LegalMovesForPlayer(s, p, dice)
	c.Add(s, p, dice, moves)
	return moves
}

// CacheStats is a point-in-time view of cache usage.
type CacheStats struct {
	Lookups uint64  `json:"lookups"`
	Hits    uint64  `json:"hits"`
	Adds    uint64  `json:"adds"`
	HitRate float64 `json:"hit_rate"`
	Size    int     `json:"size"`
}

// Stats returns cache statistics. HitRate is a percentage.
func (c *MoveCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := CacheStats{
		Lookups: c.lookups,
		Hits:    c.hits,
		Adds:    c.adds,
		Size:    2 * len(c.entries),
	}
	if c.lookups > 0 {
		st.HitRate = float64(c.hits) / float64(c.lookups) * 100
	}
	return st
}
