package srtp

import (
	"sync"
	"sync/atomic"

	"github.com/golang/groupcache/singleflight"
)

// contextCache is the per-SSRC context map shared by RTPTransformer and
// RTCPTransformer: lookup is wait-free via atomic.Value on the common
// path, and first-time derivation for a new SSRC is serialized through a
// singleflight.Group so concurrent racing inserts converge on exactly one
// derived context.
type contextCache struct {
	m  atomic.Value // map[uint32]interface{}
	mu sync.Mutex    // guards read-modify-write of m on insert
	sf singleflight.Group
}

func newContextCache() *contextCache {
	c := &contextCache{}
	c.m.Store(make(map[uint32]interface{}))
	return c
}

func (c *contextCache) get(ssrc uint32) interface{} {
	m := c.m.Load().(map[uint32]interface{})
	return m[ssrc]
}

// put inserts ctx for ssrc, copying the map so concurrent readers of the
// previous snapshot are unaffected. Callers hold c.sf's per-key critical
// section, so concurrent put calls for the same ssrc cannot race each other,
// but put may still race a put for a different ssrc; the mutex serializes
// the copy-on-write.
func (c *contextCache) put(ssrc uint32, ctx interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.m.Load().(map[uint32]interface{})
	next := make(map[uint32]interface{}, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[ssrc] = ctx
	c.m.Store(next)
}
