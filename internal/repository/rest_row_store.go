package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"damage-assessment/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RestError PostgREST 返回的错误体
type RestError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *RestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("row store returned HTTP %d", e.StatusCode)
}

// RestRowStore PostgREST（Supabase /rest/v1）行存储客户端
type RestRowStore struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewRestRowStore 创建 PostgREST 客户端
// 不做重试：失败一次即返回给调用方
func NewRestRowStore(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *RestRowStore {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("apikey", apiKey).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RestRowStore{
		httpClient: client,
		logger:     logger,
	}
}

var _ RowStore = (*RestRowStore)(nil)

// Select GET /rest/v1/{table}?select=*&{column}=eq.{value}
func (s *RestRowStore) Select(ctx context.Context, table, filterColumn string, filterValue any) ([]domain.RawRow, error) {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetPathParam("table", table).
		SetQueryParam("select", "*").
		SetQueryParam(filterColumn, eqFilter(filterValue)).
		Get("/rest/v1/{table}")
	if err != nil {
		s.logger.Error("Row store select failed",
			zap.String("table", table),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to call row store: %w", err)
	}
	if resp.IsError() {
		return nil, decodeRestError(resp)
	}

	dec := json.NewDecoder(strings.NewReader(string(resp.Body())))
	dec.UseNumber()
	var rows []domain.RawRow
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}

	s.logger.Debug("Row store select",
		zap.String("table", table),
		zap.String("filter_column", filterColumn),
		zap.Int("row_count", len(rows)),
	)
	return rows, nil
}

// Update PATCH /rest/v1/{table}?{idColumn}=eq.{id}
func (s *RestRowStore) Update(ctx context.Context, table, idColumn string, idValue any, patch map[string]any) error {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetPathParam("table", table).
		SetQueryParam(idColumn, eqFilter(idValue)).
		SetHeader("Prefer", "return=minimal").
		SetBody(patch).
		Patch("/rest/v1/{table}")
	if err != nil {
		s.logger.Error("Row store update failed",
			zap.String("table", table),
			zap.Error(err),
		)
		return fmt.Errorf("failed to call row store: %w", err)
	}
	if resp.IsError() {
		return decodeRestError(resp)
	}
	return nil
}

func eqFilter(v any) string {
	return "eq." + fmt.Sprint(v)
}

func decodeRestError(resp *resty.Response) error {
	restErr := &RestError{StatusCode: resp.StatusCode()}
	if err := json.Unmarshal(resp.Body(), restErr); err != nil || restErr.Message == "" {
		if body := strings.TrimSpace(string(resp.Body())); body != "" && err != nil {
			restErr.Message = fmt.Sprintf("row store returned HTTP %d: %s", resp.StatusCode(), body)
		}
	}
	return restErr
}

// RestRowStoreFactory 每个配置创建一个 PostgREST 客户端
type RestRowStoreFactory struct {
	timeout time.Duration
	logger  *zap.Logger
}

func NewRestRowStoreFactory(timeout time.Duration, logger *zap.Logger) *RestRowStoreFactory {
	return &RestRowStoreFactory{timeout: timeout, logger: logger}
}

func (f *RestRowStoreFactory) Open(cfg domain.Configuration) (RowStore, error) {
	return NewRestRowStore(cfg.URL, cfg.APIKey, f.timeout, f.logger), nil
}
