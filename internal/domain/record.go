package domain

// RawRow 存储端返回的未定型行（列名 -> 值），只由 mapping 包解读
type RawRow map[string]any

// UnknownLocation location used when the mapped column is empty
const UnknownLocation = "Unknown"

// Record 规范化后的单张损伤图片记录（值类型快照）
type Record struct {
	ID                    string      `json:"id"`
	JobID                 string      `json:"jobId"`
	PropertyAddress       string      `json:"propertyAddress"`
	Location              string      `json:"location"`
	Locations             []string    `json:"locations"`
	NumberOf              string      `json:"numberOf"`
	FileName              string      `json:"imageName"`
	ImageURL              string      `json:"imageUrl"`
	Description           string      `json:"description"`
	Caption               string      `json:"caption"`
	Observation           string      `json:"observation"`
	DamageDetected        string      `json:"damageDetected"`
	DamageScale           DamageScale `json:"damageScale"`
	IncludeInObservations bool        `json:"incObs"`
	IncludeInReport       bool        `json:"incReport"`

	// LocationIndex/LocationTotal: 同一位置内的 1 基序号和总数
	LocationIndex int `json:"locationIndex"`
	LocationTotal int `json:"totalLocations"`
}

// Clone returns a copy that shares no slices with r.
func (r Record) Clone() Record {
	if r.Locations != nil {
		locs := make([]string, len(r.Locations))
		copy(locs, r.Locations)
		r.Locations = locs
	}
	return r
}
