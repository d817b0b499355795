package mapping

import (
	"fmt"
	"strings"

	"damage-assessment/internal/domain"
)

// PatchRecord returns a copy of rec with one logical field replaced. Used for
// the optimistic local update that precedes the remote write.
func PatchRecord(rec domain.Record, field domain.LogicalField, value any) (domain.Record, error) {
	out := rec.Clone()

	switch field {
	case domain.FieldIncObs, domain.FieldIncReport:
		b, ok := value.(bool)
		if !ok {
			return rec, fmt.Errorf("%w: %s expects a boolean, got %T", domain.ErrInvalidFieldValue, field, value)
		}
		if field == domain.FieldIncObs {
			out.IncludeInObservations = b
		} else {
			out.IncludeInReport = b
		}
		return out, nil
	case domain.FieldLocationsArray:
		out.Locations = ParseLocations(value)
		return out, nil
	case domain.FieldDamageLabel:
		out.DamageScale = domain.NormalizeScale(value)
		return out, nil
	}

	s, ok := value.(string)
	if !ok {
		return rec, fmt.Errorf("%w: %s expects a string, got %T", domain.ErrInvalidFieldValue, field, value)
	}

	switch field {
	case domain.FieldLocation:
		if strings.TrimSpace(s) == "" {
			return rec, fmt.Errorf("%w: location must not be empty", domain.ErrInvalidFieldValue)
		}
		out.Location = s
	case domain.FieldJobID:
		out.JobID = s
	case domain.FieldPropertyAddress:
		out.PropertyAddress = s
	case domain.FieldNumberOf:
		out.NumberOf = s
	case domain.FieldFileName:
		out.FileName = s
	case domain.FieldDescription:
		out.Description = s
	case domain.FieldCaption:
		out.Caption = s
	case domain.FieldObservation:
		out.Observation = s
	case domain.FieldDamageDetected:
		out.DamageDetected = s
	case domain.FieldImageLocation:
		out.ImageURL = s
	default:
		return rec, fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}
	return out, nil
}

// PatchRecords replaces the record with the given id in a new collection.
// An id that is not present leaves the collection unchanged.
func PatchRecords(records []domain.Record, id string, field domain.LogicalField, value any) ([]domain.Record, error) {
	out := make([]domain.Record, len(records))
	copy(out, records)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		patched, err := PatchRecord(out[i], field, value)
		if err != nil {
			return records, err
		}
		out[i] = patched
	}
	return out, nil
}

// LocationChoices 当前位置不在候选列表中时放到最前面
func LocationChoices(rec domain.Record) []string {
	for _, l := range rec.Locations {
		if l == rec.Location {
			return append([]string(nil), rec.Locations...)
		}
	}
	return append([]string{rec.Location}, rec.Locations...)
}
