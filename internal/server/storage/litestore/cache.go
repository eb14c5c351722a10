package litestore

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/cockroachdb/swiss"
	"github.com/plainq/stamp/internal/server/storage"
	"github.com/plainq/stamp/timestamp"
)

// recordCacheSize is the default number of cached records.
const recordCacheSize = 1024

// recordCache is an in-memory LRU cache of records in front of SQLite.
type recordCache struct {
	mu   sync.Mutex
	size int

	byID    *swiss.Map[string, *list.Element]
	records *list.List
}

func newRecordCache(size int) *recordCache {
	if size <= 0 {
		size = recordCacheSize
	}

	cache := recordCache{
		size:    size,
		byID:    swiss.New[string, *list.Element](size),
		records: list.New(),
	}

	return &cache
}

func (c *recordCache) get(id string) (storage.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.byID.Get(id)
	if !ok {
		return storage.Record{}, false
	}

	c.records.MoveToFront(e)

	return entry(e), true
}

// put adds or refreshes a record, evicting the least recently used one
// when the cache is full.
func (c *recordCache) put(record storage.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.byID.Get(record.ID); ok {
		e.Value = record
		c.records.MoveToFront(e)

		return
	}

	if c.records.Len() >= c.size {
		oldest := c.records.Back()
		c.records.Remove(oldest)
		c.byID.Delete(entry(oldest).ID)
	}

	c.byID.Put(record.ID, c.records.PushFront(record))
}

func (c *recordCache) delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.byID.Get(id)
	if !ok {
		return
	}

	c.records.Remove(e)
	c.byID.Delete(id)
}

// sweep drops records last updated before cutoff, mirroring the storage GC.
func (c *recordCache) sweep(cutoff timestamp.Timestamp) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	swept := 0

	for e := c.records.Front(); e != nil; {
		next := e.Next()

		if record := entry(e); record.Updated.Before(cutoff) {
			c.records.Remove(e)
			c.byID.Delete(record.ID)
			swept++
		}

		e = next
	}

	return swept
}

func (c *recordCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.records.Len()
}

func entry(e *list.Element) storage.Record {
	record, ok := e.Value.(storage.Record)
	if !ok {
		panic(fmt.Errorf("invalid type in record cache: %#v", e.Value))
	}

	return record
}
