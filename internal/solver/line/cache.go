package line

import (
	"container/list"
	"strconv"
	"strings"

	"svw.info/nonogram/internal/domain"
)

// Cache memoizes line-solver results under a bounded LRU policy. Keys are
// structural (description content + line content), so both feasible and
// infeasible outcomes are safe to keep. Hit rates are high because the same
// lines recur constantly during probing.
type Cache[C domain.Color[C]] struct {
	capacity int
	order    *list.List
	items    map[string]*list.Element

	hits, misses int
}

type cacheEntry[C domain.Color[C]] struct {
	key    string
	solved []C
	err    error
}

// NewCache creates a cache holding at most capacity entries.
func NewCache[C domain.Color[C]](capacity int) *Cache[C] {
	return &Cache[C]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Key builds the cache key for one (description, line) pair.
func Key[C domain.Color[C]](desc domain.Description[C], cells []C) string {
	var sb strings.Builder
	sb.WriteString(desc.Key())
	sb.WriteByte('/')
	for _, c := range cells {
		sb.WriteString(strconv.FormatUint(uint64(c.State()), 16))
		sb.WriteByte('.')
	}
	return sb.String()
}

// Get returns the cached outcome for key, if any.
func (c *Cache[C]) Get(key string) ([]C, error, bool) {
	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	e := el.Value.(*cacheEntry[C])
	return e.solved, e.err, true
}

// Put stores one outcome, evicting the least recently used entry when full.
func (c *Cache[C]) Put(key string, solved []C, err error) {
	if c.capacity <= 0 {
		return
	}
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value = &cacheEntry[C]{key: key, solved: solved, err: err}
		return
	}
	el := c.order.PushFront(&cacheEntry[C]{key: key, solved: solved, err: err})
	c.items[key] = el
	if c.order.Len() > c.capacity {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.items, last.Value.(*cacheEntry[C]).key)
	}
}

// Stats reports accumulated hits and misses.
func (c *Cache[C]) Stats() (hits, misses int) { return c.hits, c.misses }

// Len is the current number of entries.
func (c *Cache[C]) Len() int { return c.order.Len() }
