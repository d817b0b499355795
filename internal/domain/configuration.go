package domain

import (
	"fmt"
	"strings"
)

// LogicalField 逻辑字段名（与存储端实际列名解耦）
type LogicalField string

const (
	FieldJobID           LogicalField = "jobId"
	FieldPropertyAddress LogicalField = "propertyAddress"
	FieldLocation        LogicalField = "location"
	FieldLocationsArray  LogicalField = "locationsArray"
	FieldNumberOf        LogicalField = "numberOf"
	FieldFileName        LogicalField = "fileName"
	FieldDescription     LogicalField = "description"
	FieldCaption         LogicalField = "caption"
	FieldObservation     LogicalField = "observation"
	FieldDamageDetected  LogicalField = "damageDetected"
	FieldDamageLabel     LogicalField = "damageLabel"
	FieldImageLocation   LogicalField = "imageLocation"
	FieldIncObs          LogicalField = "incObs"
	FieldIncReport       LogicalField = "incReport"
)

var logicalFields = []LogicalField{
	FieldJobID,
	FieldPropertyAddress,
	FieldLocation,
	FieldLocationsArray,
	FieldNumberOf,
	FieldFileName,
	FieldDescription,
	FieldCaption,
	FieldObservation,
	FieldDamageDetected,
	FieldDamageLabel,
	FieldImageLocation,
	FieldIncObs,
	FieldIncReport,
}

// LogicalFields returns every mapped logical field in declaration order.
func LogicalFields() []LogicalField {
	out := make([]LogicalField, len(logicalFields))
	copy(out, logicalFields)
	return out
}

// ParseLogicalField 校验字段名是否属于列映射
func ParseLogicalField(name string) (LogicalField, error) {
	for _, f := range logicalFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// ColumnMapping 逻辑字段 -> 存储端列名
type ColumnMapping struct {
	JobID           string `json:"jobId"`
	PropertyAddress string `json:"propertyAddress"`
	Location        string `json:"location"`
	LocationsArray  string `json:"locationsArray"`
	NumberOf        string `json:"numberOf"`
	FileName        string `json:"fileName"`
	Description     string `json:"description"`
	Caption         string `json:"caption"`
	Observation     string `json:"observation"`
	DamageDetected  string `json:"damageDetected"`
	DamageLabel     string `json:"damageLabel"`
	ImageLocation   string `json:"imageLocation"`
	IncObs          string `json:"incObs"`
	IncReport       string `json:"incReport"`
}

// Column resolves a logical field to its configured column name.
func (m ColumnMapping) Column(f LogicalField) (string, bool) {
	switch f {
	case FieldJobID:
		return m.JobID, true
	case FieldPropertyAddress:
		return m.PropertyAddress, true
	case FieldLocation:
		return m.Location, true
	case FieldLocationsArray:
		return m.LocationsArray, true
	case FieldNumberOf:
		return m.NumberOf, true
	case FieldFileName:
		return m.FileName, true
	case FieldDescription:
		return m.Description, true
	case FieldCaption:
		return m.Caption, true
	case FieldObservation:
		return m.Observation, true
	case FieldDamageDetected:
		return m.DamageDetected, true
	case FieldDamageLabel:
		return m.DamageLabel, true
	case FieldImageLocation:
		return m.ImageLocation, true
	case FieldIncObs:
		return m.IncObs, true
	case FieldIncReport:
		return m.IncReport, true
	}
	return "", false
}

// CountSource 决定每个位置的序号/总数来源
type CountSource string

const (
	// CountSourceComputed 按抓取顺序逐位置计数
	CountSourceComputed CountSource = "computed"
	// CountSourceColumn 直接解析 number-of 列（"3 of 7"）
	CountSourceColumn CountSource = "column"
)

// DefaultIDColumn primary key column used when none is configured
const DefaultIDColumn = "id"

// Configuration 存储连接 + 表名 + 列映射
type Configuration struct {
	URL         string        `json:"url"`
	APIKey      string        `json:"anonKey"`
	TableName   string        `json:"tableName"`
	IDColumn    string        `json:"idColumn,omitempty"`
	CountSource CountSource   `json:"countSource,omitempty"`
	Columns     ColumnMapping `json:"columns"`
}

// DefaultConfiguration 未保存过配置时使用：无存储地址，列名为默认值
func DefaultConfiguration() Configuration {
	return Configuration{
		IDColumn:    DefaultIDColumn,
		CountSource: CountSourceComputed,
		Columns: ColumnMapping{
			JobID:           "job_id",
			PropertyAddress: "property_address",
			Location:        "location",
			LocationsArray:  "locations_array",
			NumberOf:        "of_how_many",
			FileName:        "org_image_name",
			Description:     "description",
			Caption:         "caption",
			Observation:     "observation",
			DamageDetected:  "damage_detected",
			DamageLabel:     "damage_classification",
			ImageLocation:   "image_location",
			IncObs:          "inc_obs",
			IncReport:       "inc_report",
		},
	}
}

// PrimaryKeyColumn returns the id column, falling back to "id".
func (c Configuration) PrimaryKeyColumn() string {
	if col := strings.TrimSpace(c.IDColumn); col != "" {
		return col
	}
	return DefaultIDColumn
}

// EffectiveCountSource treats an unset count source as computed.
func (c Configuration) EffectiveCountSource() CountSource {
	if c.CountSource == "" {
		return CountSourceComputed
	}
	return c.CountSource
}

// Validate 在发起任何查询前校验配置完整性
func (c Configuration) Validate() error {
	var missing []string
	if strings.TrimSpace(c.URL) == "" {
		missing = append(missing, "url")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "anonKey")
	}
	if strings.TrimSpace(c.TableName) == "" {
		missing = append(missing, "tableName")
	}
	for _, f := range logicalFields {
		if col, _ := c.Columns.Column(f); strings.TrimSpace(col) == "" {
			missing = append(missing, "columns."+string(f))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfigurationIncomplete, strings.Join(missing, ", "))
	}

	switch c.EffectiveCountSource() {
	case CountSourceComputed, CountSourceColumn:
	default:
		return fmt.Errorf("%w: unknown count source %q", ErrInvalidConfiguration, c.CountSource)
	}
	return nil
}

// IsConfigured reports whether the configuration passes Validate.
func (c Configuration) IsConfigured() bool {
	return c.Validate() == nil
}

// Masked 返回隐藏凭证后的副本（用于 API 输出）
func (c Configuration) Masked() Configuration {
	c.APIKey = MaskSecret(c.APIKey)
	return c
}

// MaskSecret keeps the last four characters of a secret.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}
