package record

import (
	"strings"

	"github.com/google/uuid"
)

// Record is an identified record: a flattened copy of one raw payload item
// guaranteed to carry a non-empty "id" key. Records are created once at
// normalization time; downstream stages derive new values instead of
// mutating them.
type Record map[string]any

// ID returns the record's identifier.
func (r Record) ID() string {
	return String(r["id"])
}

// idCandidates ranks the remote keys that may carry a stable identifier.
// Caller-stable ids win over content-derived ones; fabrication is last.
var idCandidates = []string{"id", "ID", "_id", "reference", "slug", "email", "name"}

// Normalize converts a decoded JSON collection into identified records.
// Non-array input yields an empty result and non-object elements are
// dropped. Every returned record has a non-empty id, unique within the
// returned slice; when two elements resolve to the same id the later one
// receives a fabricated identifier.
func Normalize(raw any) []Record {
	items, ok := raw.([]any)
	if !ok {
		return []Record{}
	}

	records := make([]Record, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		rec := make(Record, len(obj)+1)
		for k, v := range obj {
			rec[k] = v
		}

		id := resolveID(obj)
		if _, dup := seen[id]; dup {
			id = uuid.NewString()
		}
		seen[id] = struct{}{}
		rec["id"] = id

		records = append(records, rec)
	}

	return records
}

func resolveID(obj map[string]any) string {
	for _, key := range idCandidates {
		if v, ok := obj[key]; ok {
			if s := String(v); s != "" {
				return s
			}
		}
	}
	return uuid.NewString()
}

// AsObject reports raw as a JSON object.
func AsObject(raw any) (map[string]any, bool) {
	obj, ok := raw.(map[string]any)
	return obj, ok
}

// Blank reports whether a string value is empty after trimming.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
