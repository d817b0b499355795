package mapping

import (
	"testing"

	"damage-assessment/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(recs []domain.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestOrderRecords_ByLeadingNumber(t *testing.T) {
	recs := []domain.Record{
		{ID: "b", NumberOf: "2 of 5"},
		{ID: "c", NumberOf: "10 of 5"},
		{ID: "a", NumberOf: "1 of 5"},
	}

	out := OrderRecords(recs)

	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	// 原切片顺序不变
	assert.Equal(t, []string{"b", "c", "a"}, ids(recs))
}

func TestOrderRecords_MissingNumberSortsFirst(t *testing.T) {
	recs := []domain.Record{
		{ID: "one", NumberOf: "1"},
		{ID: "none", NumberOf: "n/a"},
		{ID: "empty", NumberOf: ""},
	}

	out := OrderRecords(recs)

	assert.Equal(t, []string{"none", "empty", "one"}, ids(out))
}

func TestOrderRecords_FileNameNumericAware(t *testing.T) {
	recs := []domain.Record{
		{ID: "10", NumberOf: "1", FileName: "img10.jpg"},
		{ID: "2", NumberOf: "1", FileName: "img2.jpg"},
		{ID: "1", NumberOf: "1", FileName: "img1.jpg"},
	}

	out := OrderRecords(recs)

	assert.Equal(t, []string{"1", "2", "10"}, ids(out))
}

func TestOrderRecords_StableForEqualKeys(t *testing.T) {
	recs := []domain.Record{
		{ID: "x", NumberOf: "3", FileName: "same.jpg"},
		{ID: "y", NumberOf: "3", FileName: "same.jpg"},
		{ID: "z", NumberOf: "3", FileName: "same.jpg"},
	}

	assert.Equal(t, []string{"x", "y", "z"}, ids(OrderRecords(recs)))
}

func TestOrderRecords_Idempotent(t *testing.T) {
	recs := []domain.Record{
		{ID: "a", NumberOf: "3 of 4", FileName: "c.jpg"},
		{ID: "b", NumberOf: "1 of 4", FileName: "z.jpg"},
		{ID: "c", NumberOf: "1 of 4", FileName: "a.jpg"},
		{ID: "d", NumberOf: "", FileName: "b.jpg"},
	}

	once := OrderRecords(recs)
	twice := OrderRecords(once)

	require.Equal(t, once, twice)
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids(once))
}

func TestOrderRecords_KeepsLocationIndex(t *testing.T) {
	recs := ResolveCounts([]domain.Record{
		{ID: "first", Location: "Kitchen", NumberOf: "9"},
		{ID: "second", Location: "Kitchen", NumberOf: "1"},
	}, domain.CountSourceComputed)

	out := OrderRecords(recs)

	require.Equal(t, []string{"second", "first"}, ids(out))
	// 序号来自获取顺序而不是排序后的顺序
	assert.Equal(t, 2, out[0].LocationIndex)
	assert.Equal(t, 1, out[1].LocationIndex)
}

func TestLeadingNumber(t *testing.T) {
	assert.Equal(t, 12, LeadingNumber("12 of 40"))
	assert.Equal(t, 7, LeadingNumber("  7/9"))
	assert.Equal(t, 0, LeadingNumber("of 3"))
	assert.Equal(t, 0, LeadingNumber(""))
	assert.Equal(t, 0, LeadingNumber("-4"))
}
