package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	commoncfg "damage-assessment/common/config"
	"damage-assessment/common/database"
	"damage-assessment/internal/domain"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresRowStore 直接访问 PostgreSQL 表的行存储
type PostgresRowStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresRowStore creates a row store over an open connection pool.
func NewPostgresRowStore(db *sql.DB, logger *zap.Logger) *PostgresRowStore {
	return &PostgresRowStore{
		db:     db,
		logger: logger,
	}
}

var _ RowStore = (*PostgresRowStore)(nil)

// Select SELECT * FROM table WHERE column = $1
func (r *PostgresRowStore) Select(ctx context.Context, table, filterColumn string, filterValue any) ([]domain.RawRow, error) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s = $1`, quoteTable(table), pq.QuoteIdentifier(filterColumn))

	rows, err := r.db.QueryContext(ctx, query, filterValue)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	typeNames := make([]string, len(columns))
	if colTypes, err := rows.ColumnTypes(); err == nil {
		for i, ct := range colTypes {
			if i < len(typeNames) {
				typeNames[i] = ct.DatabaseTypeName()
			}
		}
	}

	var result []domain.RawRow
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(domain.RawRow, len(columns))
		for i, col := range columns {
			row[col] = normalizeSQLValue(values[i], typeNames[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return result, nil
}

// Update UPDATE table SET c1 = $1, ... WHERE id = $n
func (r *PostgresRowStore) Update(ctx context.Context, table, idColumn string, idValue any, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}

	cols := make([]string, 0, len(patch))
	for c := range patch {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(c), i+1))
		args = append(args, sqlArg(patch[c]))
	}
	args = append(args, idValue)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d`,
		quoteTable(table), strings.Join(sets, ", "), pq.QuoteIdentifier(idColumn), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		r.logger.Warn("Row store update matched no rows",
			zap.String("table", table),
			zap.String("id_column", idColumn),
			zap.Any("id", idValue),
		)
	}
	return nil
}

// quoteTable 支持 schema.table 形式
func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func sqlArg(v any) any {
	switch val := v.(type) {
	case []string:
		return pq.Array(val)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
	return v
}

// normalizeSQLValue 把 lib/pq 返回的 []byte 按列类型转换为 RawRow 约定的类型
func normalizeSQLValue(v any, typeName string) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	typeName = strings.ToUpper(typeName)
	switch {
	case strings.HasPrefix(typeName, "_"):
		var arr pq.StringArray
		if err := arr.Scan(b); err == nil {
			return []string(arr)
		}
	case typeName == "NUMERIC" || typeName == "DECIMAL":
		return json.Number(string(b))
	}
	return string(b)
}

// PostgresDSN 把配置中的凭证作为密码写入连接串
func PostgresDSN(address, credential string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(address))
	if err != nil {
		return "", fmt.Errorf("invalid postgres address: %w", err)
	}
	if credential != "" {
		user := ""
		if u.User != nil {
			user = u.User.Username()
		}
		u.User = url.UserPassword(user, credential)
	}
	return u.String(), nil
}

// PostgresRowStoreFactory 按 DSN 缓存连接池
type PostgresRowStoreFactory struct {
	mu     sync.Mutex
	dbs    map[string]*sql.DB
	pool   commoncfg.DatabaseConfig
	open   func(dsn string, pool commoncfg.DatabaseConfig) (*sql.DB, error)
	logger *zap.Logger
}

func NewPostgresRowStoreFactory(pool commoncfg.DatabaseConfig, logger *zap.Logger) *PostgresRowStoreFactory {
	return &PostgresRowStoreFactory{
		dbs:    make(map[string]*sql.DB),
		pool:   pool,
		open:   database.OpenPostgres,
		logger: logger,
	}
}

func (f *PostgresRowStoreFactory) Open(cfg domain.Configuration) (RowStore, error) {
	dsn, err := PostgresDSN(cfg.URL, cfg.APIKey)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if db, ok := f.dbs[dsn]; ok {
		return NewPostgresRowStore(db, f.logger), nil
	}
	db, err := f.open(dsn, f.pool)
	if err != nil {
		return nil, err
	}
	f.dbs[dsn] = db
	f.logger.Info("Opened postgres row store", zap.String("host", hostOf(cfg.URL)))
	return NewPostgresRowStore(db, f.logger), nil
}

// Close closes every cached pool.
func (f *PostgresRowStoreFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var firstErr error
	for dsn, db := range f.dbs {
		if err := database.Close(db); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(f.dbs, dsn)
	}
	return firstErr
}

func hostOf(address string) string {
	u, err := url.Parse(address)
	if err != nil {
		return ""
	}
	return u.Host
}
