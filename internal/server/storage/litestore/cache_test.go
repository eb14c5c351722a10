package litestore

import (
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"github.com/plainq/stamp/internal/server/storage"
	"github.com/plainq/stamp/timestamp"
)

func cachedRecord(id string, updatedMillis int64) storage.Record {
	return storage.Record{
		ID:     id,
		Label:  "label-" + id,
		Record: timestamp.NewRecord(timestamp.FromMillis(updatedMillis)),
	}
}

func Test_recordCache(t *testing.T) {
	tests := map[string]struct {
		size    int
		setup   func(c *recordCache)
		wantIDs map[string]bool
	}{
		"Empty": {
			size:    2,
			setup:   func(*recordCache) {},
			wantIDs: map[string]bool{"1": false},
		},
		"Put": {
			size: 2,
			setup: func(c *recordCache) {
				c.put(cachedRecord("1", 10))
				c.put(cachedRecord("2", 20))
			},
			wantIDs: map[string]bool{"1": true, "2": true},
		},
		"EvictsLeastRecentlyUsed": {
			size: 2,
			setup: func(c *recordCache) {
				c.put(cachedRecord("1", 10))
				c.put(cachedRecord("2", 20))
				c.get("1")
				c.put(cachedRecord("3", 30))
			},
			wantIDs: map[string]bool{"1": true, "2": false, "3": true},
		},
		"RefreshDoesNotGrow": {
			size: 2,
			setup: func(c *recordCache) {
				c.put(cachedRecord("1", 10))
				c.put(cachedRecord("2", 20))
				c.put(cachedRecord("1", 15))
				c.put(cachedRecord("3", 30))
			},
			wantIDs: map[string]bool{"1": true, "2": false, "3": true},
		},
		"Delete": {
			size: 2,
			setup: func(c *recordCache) {
				c.put(cachedRecord("1", 10))
				c.delete("1")
				c.delete("missing")
			},
			wantIDs: map[string]bool{"1": false},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := newRecordCache(tc.size)
			tc.setup(c)

			for id, want := range tc.wantIDs {
				_, ok := c.get(id)
				td.Cmp(t, ok, want, "record %s", id)
			}

			td.Cmp(t, c.len(), td.Lte(tc.size))
		})
	}
}

func Test_recordCache_refresh(t *testing.T) {
	c := newRecordCache(0)
	td.Cmp(t, c.size, recordCacheSize)

	c.put(cachedRecord("1", 10))
	c.put(cachedRecord("1", 99))

	got, ok := c.get("1")
	td.Cmp(t, ok, true)
	td.Cmp(t, got.Updated.Millis(), int64(99))
	td.Cmp(t, c.len(), 1)
}

func Test_recordCache_sweep(t *testing.T) {
	c := newRecordCache(10)

	for i, updated := range []int64{5, 10, 15, 20} {
		c.put(cachedRecord(string(rune('a'+i)), updated))
	}

	td.Cmp(t, c.sweep(timestamp.FromMillis(15)), 2)
	td.Cmp(t, c.len(), 2)

	_, ok := c.get("c")
	td.Cmp(t, ok, true, "updated exactly at the cutoff stays")

	_, ok = c.get("a")
	td.Cmp(t, ok, false)
}
