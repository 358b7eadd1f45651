package calendar

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// metadataCache holds calendar list entries by ID.
type metadataCache struct {
	lru *expirable.LRU[string, CalendarInfo]
}

func newMetadataCache(size int, ttl time.Duration) *metadataCache {
	if size < 1 {
		size = 128
	}
	return &metadataCache{lru: expirable.NewLRU[string, CalendarInfo](size, nil, ttl)}
}

func (c *metadataCache) get(id string) (CalendarInfo, bool) {
	return c.lru.Get(id)
}

func (c *metadataCache) put(info CalendarInfo) {
	c.lru.Add(info.ID, info)
	if info.Primary {
		c.lru.Add(PrimaryCalendarID, info)
	}
}

func (c *metadataCache) len() int {
	return c.lru.Len()
}
