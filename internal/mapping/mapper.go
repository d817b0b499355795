package mapping

import (
	"fmt"
	"strings"

	"damage-assessment/internal/domain"
)

// MapRow converts one raw row into a Record using the configured column
// names. index is the row's position in the fetch batch and only feeds the
// placeholder id when the primary key is missing.
func MapRow(row domain.RawRow, cfg domain.Configuration, index int) domain.Record {
	cols := cfg.Columns

	location := text(row, cols.Location)
	if strings.TrimSpace(location) == "" {
		location = domain.UnknownLocation
	}

	return domain.Record{
		ID:                    recordID(row, cfg.PrimaryKeyColumn(), index),
		JobID:                 text(row, cols.JobID),
		PropertyAddress:       text(row, cols.PropertyAddress),
		Location:              location,
		Locations:             ParseLocations(cell(row, cols.LocationsArray)),
		NumberOf:              text(row, cols.NumberOf),
		FileName:              text(row, cols.FileName),
		ImageURL:              text(row, cols.ImageLocation),
		Description:           text(row, cols.Description),
		Caption:               text(row, cols.Caption),
		Observation:           text(row, cols.Observation),
		DamageDetected:        text(row, cols.DamageDetected),
		DamageScale:           domain.NormalizeScale(cell(row, cols.DamageLabel)),
		IncludeInObservations: flag(row, cols.IncObs, true),
		IncludeInReport:       flag(row, cols.IncReport, false),
	}
}

// MapRows maps a batch in fetch order.
func MapRows(rows []domain.RawRow, cfg domain.Configuration) []domain.Record {
	out := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		out = append(out, MapRow(row, cfg, i))
	}
	return out
}

// PlaceholderID 行缺少主键时使用的占位 id（同一批次内唯一且稳定）
func PlaceholderID(index int) string {
	return fmt.Sprintf("img-%d", index)
}

func recordID(row domain.RawRow, idColumn string, index int) string {
	if id := text(row, idColumn); id != "" {
		return id
	}
	return PlaceholderID(index)
}

func cell(row domain.RawRow, column string) any {
	if column == "" {
		return nil
	}
	return row[column]
}

func text(row domain.RawRow, column string) string {
	return cellString(cell(row, column))
}

// flag: 列缺失或为 null 时使用默认值；原生 bool 直接透传
func flag(row domain.RawRow, column string, def bool) bool {
	v := cell(row, column)
	if v == nil {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return truthy(v)
}
