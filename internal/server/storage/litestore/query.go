package litestore

import (
	"strconv"

	"github.com/plainq/stamp/internal/server/storage"
	"github.com/valyala/fasttemplate"
)

const (
	// sTag and eTag represents the fasttemplate start and end template tags.
	sTag, eTag = "{{", "}}"

	queryInsertRecord = `insert into records (record_id, label, created_at, updated_at) values (?, ?, ?, ?);`

	querySelectRecord = `select record_id, label, created_at, updated_at from records where record_id = ?;`

	queryTouchRecord = `update records set updated_at = ? where record_id = ?;`

	queryDeleteRecord = `delete from records where record_id = ?;`

	queryCountRecords = `select count(*) from records;`

	// querySweepRecords deletes records not touched since the given cutoff.
	querySweepRecords = `delete from records where updated_at < ?;`

	// queryListRecords selects one page of records. The cursor condition is
	// rendered only when a cursor is given.
	queryListRecords = `select record_id, label, created_at, updated_at from records {{where}} order by record_id {{order}} limit {{limit}};`
)

type querier struct {
	tListRecords *fasttemplate.Template
}

func newQuerier() querier {
	q := querier{
		tListRecords: fasttemplate.New(queryListRecords, sTag, eTag),
	}

	return q
}

// listRecords renders the listing query. The cursor itself is passed as a
// query argument. The limit is one more than the page size so the caller
// can tell whether another page follows. Template values must be strings.
func (q *querier) listRecords(order storage.SortOrder, withCursor bool, pageSize uint32) string {
	var (
		orderStr = "asc"
		cmp      = ">"
		where    = ""
	)

	if order == storage.SortDesc {
		orderStr = "desc"
		cmp = "<"
	}

	if withCursor {
		where = "where record_id " + cmp + " ?"
	}

	query := q.tListRecords.ExecuteString(map[string]any{
		"where": where,
		"order": orderStr,
		"limit": strconv.FormatUint(uint64(pageSize)+1, 10),
	})

	return query
}
