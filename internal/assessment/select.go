package assessment

import "sort"

// Students returns one entry per distinct student id, named after the first
// record seen for that id, sorted by name then id.
func Students(records []Record) []Student {
	seen := map[string]bool{}
	out := make([]Student, 0)
	for _, r := range records {
		if seen[r.StudentID] {
			continue
		}
		seen[r.StudentID] = true
		out = append(out, Student{ID: r.StudentID, Name: r.StudentName})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ForStudent returns the records of one student in ingestion order.
func ForStudent(records []Record, id string) []Record {
	var out []Record
	for _, r := range records {
		if r.StudentID == id {
			out = append(out, r)
		}
	}
	return out
}

// Latest returns the record with the greatest date. Equal dates resolve to
// the record ingested first.
func Latest(records []Record) (Record, bool) {
	return pick(records, func(a, b Record) bool { return a.Date.After(b.Date) })
}

// Earliest returns the record with the smallest date. Equal dates resolve to
// the record ingested first.
func Earliest(records []Record) (Record, bool) {
	return pick(records, func(a, b Record) bool { return a.Date.Before(b.Date) })
}

func pick(records []Record, better func(a, b Record) bool) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	best := records[0]
	for _, r := range records[1:] {
		if better(r, best) || (r.Date.Equal(best.Date) && r.Index < best.Index) {
			best = r
		}
	}
	return best, true
}

// Chronological returns a copy of records ordered by date, ties by ingestion order.
func Chronological(records []Record) []Record {
	out := append([]Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Index < out[j].Index
	})
	return out
}
