package application

import (
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultRoomCacheSize = 256

// roomCache keeps recently resolved rooms so that admission does not hit the
// store for every room lookup. Room mutations invalidate entries explicitly.
type roomCache struct {
	lru *expirable.LRU[string, Room]
}

// newRoomCache returns nil when ttl is not positive, which disables caching.
func newRoomCache(ttl time.Duration, size int) *roomCache {
	if ttl <= 0 {
		return nil
	}
	if size <= 0 {
		size = defaultRoomCacheSize
	}
	return &roomCache{lru: expirable.NewLRU[string, Room](size, nil, ttl)}
}

func (c *roomCache) Get(id string) (Room, bool) {
	if c == nil {
		return Room{}, false
	}
	room, ok := c.lru.Get(id)
	if !ok {
		return Room{}, false
	}
	return cloneRoom(room), true
}

func (c *roomCache) Store(room Room) {
	if c == nil {
		return
	}
	c.lru.Add(room.ID, cloneRoom(room))
}

func (c *roomCache) Invalidate(id string) {
	if c == nil {
		return
	}
	c.lru.Remove(id)
}

func cloneRoom(room Room) Room {
	room.EquipmentIDs = slices.Clone(room.EquipmentIDs)
	room.Equipment = slices.Clone(room.Equipment)
	return room
}

func (c *roomCache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}
