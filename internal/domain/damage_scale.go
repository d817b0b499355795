package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DamageScale 损伤等级（0-5，与存储端的整数编码一致）
type DamageScale int

const (
	ScaleNone DamageScale = iota
	ScaleMinor
	ScaleModerate
	ScaleSerious
	ScaleSevere
	ScaleCritical
)

var scaleLabels = [...]string{"None", "Minor", "Moderate", "Serious", "Severe", "Critical"}

// String returns the canonical label.
func (s DamageScale) String() string {
	if s < ScaleNone || s > ScaleCritical {
		return scaleLabels[ScaleNone]
	}
	return scaleLabels[s]
}

// Int returns the 0-5 encoding.
func (s DamageScale) Int() int {
	if s < ScaleNone || s > ScaleCritical {
		return 0
	}
	return int(s)
}

func (s DamageScale) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *DamageScale) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*s = NormalizeScale(raw)
	return nil
}

// DamageScales 按等级顺序返回全部标签（用于导出/前端下拉）
func DamageScales() []DamageScale {
	return []DamageScale{ScaleNone, ScaleMinor, ScaleModerate, ScaleSerious, ScaleSevere, ScaleCritical}
}

// NormalizeScale maps a raw cell to a DamageScale. Integers 0-5 (native or numeric
// strings) map by position; otherwise a string must equal a label exactly.
// Everything else is ScaleNone.
func NormalizeScale(raw any) DamageScale {
	switch v := raw.(type) {
	case nil:
		return ScaleNone
	case string:
		return scaleFromString(v)
	case []byte:
		return scaleFromString(string(v))
	case DamageScale:
		return DamageScale(v.Int())
	}

	if f, ok := numericValue(raw); ok {
		return scaleFromNumber(f)
	}
	return ScaleNone
}

func scaleFromString(s string) DamageScale {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return scaleFromNumber(float64(i))
	}
	for i, label := range scaleLabels {
		if s == label {
			return DamageScale(i)
		}
	}
	return ScaleNone
}

func scaleFromNumber(f float64) DamageScale {
	if f != math.Trunc(f) || f < 0 || f > float64(ScaleCritical) {
		return ScaleNone
	}
	return DamageScale(int(f))
}

// numericValue 将存储端可能返回的各种数值类型统一为 float64
func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
