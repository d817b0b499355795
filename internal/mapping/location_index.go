package mapping

import (
	"regexp"
	"strconv"

	"damage-assessment/internal/domain"
)

// LocationIndex holds per-record positions and per-location totals computed
// from fetch order.
type LocationIndex struct {
	// Positions[i] 为 records[i] 在其位置内的 1 基序号
	Positions []int
	Totals    map[string]int
}

// BuildLocationIndex runs one left-to-right pass over records in fetch order.
func BuildLocationIndex(records []domain.Record) LocationIndex {
	idx := LocationIndex{
		Positions: make([]int, len(records)),
		Totals:    make(map[string]int),
	}
	for i, rec := range records {
		idx.Totals[rec.Location]++
		idx.Positions[i] = idx.Totals[rec.Location]
	}
	return idx
}

// Apply stamps position and total onto a copy of records. records must be
// the same slice (same order) the index was built from.
func (idx LocationIndex) Apply(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	for i, rec := range records {
		if i < len(idx.Positions) {
			rec.LocationIndex = idx.Positions[i]
		}
		rec.LocationTotal = idx.Totals[rec.Location]
		out[i] = rec
	}
	return out
}

var numberOfPairRe = regexp.MustCompile(`(?i)^\s*(\d+)\s*(?:of|/)\s*(\d+)`)

// ParseNumberOf 解析 "3 of 7" / "3/7" 形式的序号与总数
func ParseNumberOf(s string) (position, total int, ok bool) {
	m := numberOfPairRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	p, err1 := strconv.Atoi(m[1])
	t, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return p, t, true
}

// ResolveCounts attaches position/total according to the count source.
// With CountSourceColumn the declared "N of M" pair wins; records whose
// number-of cannot be parsed keep the computed values.
func ResolveCounts(records []domain.Record, source domain.CountSource) []domain.Record {
	out := BuildLocationIndex(records).Apply(records)
	if source != domain.CountSourceColumn {
		return out
	}
	for i := range out {
		if p, t, ok := ParseNumberOf(out[i].NumberOf); ok {
			out[i].LocationIndex = p
			out[i].LocationTotal = t
		}
	}
	return out
}
