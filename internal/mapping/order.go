package mapping

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"damage-assessment/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// OrderRecords returns a stably sorted copy: leading integer of NumberOf
// first (no digits sorts as 0), then file name with numeric-aware collation
// so "img2" precedes "img10".
func OrderRecords(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	copy(out, records)

	keys := make([]int, len(out))
	for i, rec := range out {
		keys[i] = LeadingNumber(rec.NumberOf)
	}
	perm := make([]int, len(out))
	for i := range perm {
		perm[i] = i
	}

	// Collator 非并发安全，每次排序单独创建
	col := collate.New(language.English, collate.Numeric)
	sort.SliceStable(perm, func(a, b int) bool {
		ia, ib := perm[a], perm[b]
		if keys[ia] != keys[ib] {
			return keys[ia] < keys[ib]
		}
		return col.CompareString(out[ia].FileName, out[ib].FileName) < 0
	})

	sorted := make([]domain.Record, len(out))
	for i, p := range perm {
		sorted[i] = out[p]
	}
	return sorted
}

// LeadingNumber parses the prefix digits of s; 0 when there are none.
func LeadingNumber(s string) int {
	s = strings.TrimLeft(s, " \t")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return math.MaxInt
	}
	return n
}
