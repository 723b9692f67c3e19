package repositories

import (
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// PageRequest asks for up to Limit items after the item whose ID is Cursor.
// An empty or unknown cursor starts from the beginning.
type PageRequest struct {
	Cursor string
	Limit  int
}

// Page is one slice of an ordered listing. NextCursor is nil on the last page.
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"nextCursor"`
}

// NormalizeLimit applies the default page size and the upper bound.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

// TrimPage turns a limit+1 fetch into a page. The extra row only signals that
// more items exist; the cursor is the ID of the last item returned.
func TrimPage[T any](rows []T, limit int, id func(T) string) Page[T] {
	if rows == nil {
		rows = []T{}
	}
	if len(rows) <= limit {
		return Page[T]{Items: rows}
	}

	items := rows[:limit]
	next := id(items[len(items)-1])
	return Page[T]{Items: items, NextCursor: &next}
}

// MapPage converts the items of a page, keeping the cursor.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		out = append(out, fn(item))
	}
	return Page[U]{Items: out, NextCursor: p.NextCursor}
}

type sortKey struct {
	column string
	desc   bool
}

var (
	newestFirst = []sortKey{{"created_at", true}, {"id", true}}
	oldestFirst = []sortKey{{"created_at", false}, {"id", false}}
	// Soonest event first, newest post first among events on the same date.
	upcomingFirst = []sortKey{{"event_date", false}, {"created_at", true}, {"id", true}}
)

func qualify(table string, keys []sortKey) []sortKey {
	out := make([]sortKey, len(keys))
	for i, k := range keys {
		out[i] = sortKey{column: table + "." + k.column, desc: k.desc}
	}
	return out
}

func orderClause(keys []sortKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		dir := "ASC"
		if k.desc {
			dir = "DESC"
		}
		parts[i] = k.column + " " + dir
	}
	return strings.Join(parts, ", ")
}

// keysetWhere builds the predicate selecting rows strictly after the row whose
// sort key values are given, for the ordering described by keys:
//
//	(k1 > v1) OR (k1 = v1 AND k2 > v2) OR ...
//
// with < in place of > for descending keys.
func keysetWhere(keys []sortKey, values []interface{}) (string, []interface{}) {
	var (
		ors  []string
		args []interface{}
	)
	for i, k := range keys {
		conds := make([]string, 0, i+1)
		for j := 0; j < i; j++ {
			conds = append(conds, keys[j].column+" = ?")
			args = append(args, values[j])
		}
		op := " > ?"
		if k.desc {
			op = " < ?"
		}
		conds = append(conds, k.column+op)
		args = append(args, values[i])
		ors = append(ors, "("+strings.Join(conds, " AND ")+")")
	}
	return "(" + strings.Join(ors, " OR ") + ")", args
}
