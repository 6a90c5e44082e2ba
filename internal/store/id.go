package store

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator derives entity ids from a caller-supplied instant, the
// way the stored records have always been keyed (decimal string of a
// unix timestamp). Colliding instants are bumped so ids stay unique
// within a session.
type IDGenerator struct {
	mutex sync.Mutex
	last  int64
}

func (g *IDGenerator) Next(now time.Time) string {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	id := now.UnixMicro()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return strconv.FormatInt(id, 10)
}
