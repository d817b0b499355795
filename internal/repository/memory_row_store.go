package repository

import (
	"context"
	"fmt"
	"sync"

	"damage-assessment/internal/domain"

	"github.com/google/uuid"
)

// MemoryRowStore: 存储未就绪时用于联调的内存行存储
// - 按表名隔离
// - 主键使用 uuid
// - 等值比较基于字符串形式（与 PostgREST eq. 过滤一致）
type MemoryRowStore struct {
	mu     sync.RWMutex
	tables map[string][]domain.RawRow
}

func NewMemoryRowStore() *MemoryRowStore {
	return &MemoryRowStore{tables: map[string][]domain.RawRow{}}
}

var _ RowStore = (*MemoryRowStore)(nil)

// Insert appends a copy of row to table, assigning a uuid under idColumn when absent.
func (m *MemoryRowStore) Insert(table, idColumn string, row domain.RawRow) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make(domain.RawRow, len(row)+1)
	for k, v := range row {
		cp[k] = v
	}
	if cp[idColumn] == nil {
		cp[idColumn] = uuid.NewString()
	}
	m.tables[table] = append(m.tables[table], cp)
	return fmt.Sprint(cp[idColumn])
}

func (m *MemoryRowStore) Select(_ context.Context, table, filterColumn string, filterValue any) ([]domain.RawRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := fmt.Sprint(filterValue)
	var out []domain.RawRow
	for _, row := range m.tables[table] {
		v, ok := row[filterColumn]
		if !ok || v == nil || fmt.Sprint(v) != want {
			continue
		}
		cp := make(domain.RawRow, len(row))
		for k, val := range row {
			cp[k] = val
		}
		out = append(out, cp)
	}
	return out, nil
}

func (m *MemoryRowStore) Update(_ context.Context, table, idColumn string, idValue any, patch map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := fmt.Sprint(idValue)
	for _, row := range m.tables[table] {
		if v := row[idColumn]; v != nil && fmt.Sprint(v) == want {
			for k, val := range patch {
				row[k] = val
			}
		}
	}
	return nil
}

// SeedDemoJobs 写入演示数据 JOB-001 / JOB-002（列名取自 cfg.Columns）
func (m *MemoryRowStore) SeedDemoJobs(cfg domain.Configuration) {
	c := cfg.Columns
	idCol := cfg.PrimaryKeyColumn()

	type demo struct {
		job, address, location, numberOf, file, scale, detected string
	}
	rows := []demo{
		{"JOB-001", "12 Harbour St", "Kitchen", "2 of 3", "IMG_0010.jpg", "Moderate", "Water staining on ceiling"},
		{"JOB-001", "12 Harbour St", "Kitchen", "1 of 3", "IMG_0002.jpg", "3", "Cabinet swelling"},
		{"JOB-001", "12 Harbour St", "Living Room", "1 of 1", "IMG_0015.jpg", "Minor", "Paint blistering"},
		{"JOB-001", "12 Harbour St", "Kitchen", "3 of 3", "IMG_0021.jpg", "None", ""},
		{"JOB-002", "7 Ridge Rd", "Garage", "1 of 2", "IMG_1001.jpg", "Severe", "Roller door buckled"},
		{"JOB-002", "7 Ridge Rd", "", "2 of 2", "IMG_1002.jpg", "5", "Structural crack"},
	}
	for _, d := range rows {
		m.Insert(cfg.TableName, idCol, domain.RawRow{
			c.JobID:           d.job,
			c.PropertyAddress: d.address,
			c.Location:        d.location,
			c.LocationsArray:  `["Kitchen","Living Room","Master Bedroom","Bathroom","Garage","Basement","Attic","Exterior"]`,
			c.NumberOf:        d.numberOf,
			c.FileName:        d.file,
			c.Description:     "",
			c.Caption:         d.location + " - " + d.file,
			c.Observation:     "",
			c.DamageDetected:  d.detected,
			c.DamageLabel:     d.scale,
			c.ImageLocation:   "https://images.example.com/" + d.job + "/" + d.file,
			c.IncObs:          nil,
			c.IncReport:       false,
		})
	}
}
