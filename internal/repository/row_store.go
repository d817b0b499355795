package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"damage-assessment/internal/domain"
)

// RowStore 通用行存储：按等值条件查询、按主键更新单行
// 设计原则：Repository 层只负责数据访问，不解读行内容
type RowStore interface {
	// Select returns every column of the rows where filterColumn = filterValue.
	Select(ctx context.Context, table, filterColumn string, filterValue any) ([]domain.RawRow, error)

	// Update sets the patch columns on the single row where idColumn = idValue.
	Update(ctx context.Context, table, idColumn string, idValue any, patch map[string]any) error
}

// RowStoreFactory opens a RowStore for one configuration. Configuration is
// passed on every call; factories keep no default instance.
type RowStoreFactory interface {
	Open(cfg domain.Configuration) (RowStore, error)
}

// SchemeFactory 按存储地址的 scheme 选择实现
//   - http(s)://          -> PostgREST (Supabase)
//   - postgres(ql)://     -> PostgreSQL (lib/pq)
//   - memory://           -> 内存演示数据
type SchemeFactory struct {
	rest     *RestRowStoreFactory
	postgres *PostgresRowStoreFactory
	memory   *MemoryRowStore
}

func NewSchemeFactory(rest *RestRowStoreFactory, postgres *PostgresRowStoreFactory, memory *MemoryRowStore) *SchemeFactory {
	return &SchemeFactory{rest: rest, postgres: postgres, memory: memory}
}

var _ RowStoreFactory = (*SchemeFactory)(nil)

func (f *SchemeFactory) Open(cfg domain.Configuration) (RowStore, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("invalid store address: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if f.rest == nil {
			break
		}
		return f.rest.Open(cfg)
	case "postgres", "postgresql":
		if f.postgres == nil {
			break
		}
		return f.postgres.Open(cfg)
	case "memory":
		if f.memory == nil {
			break
		}
		return f.memory, nil
	}
	return nil, fmt.Errorf("unsupported store address scheme %q", u.Scheme)
}
