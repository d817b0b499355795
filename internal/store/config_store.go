package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"damage-assessment/internal/domain"

	"go.uber.org/zap"
)

// DefaultConfigSlot 配置在 KV 中的槽位名
const DefaultConfigSlot = "supabase-damage-config"

// ConfigStore 把 domain.Configuration 以 JSON 保存到一个命名槽位
type ConfigStore struct {
	kv     KV
	slot   string
	logger *zap.Logger
}

func NewConfigStore(kv KV, slot string, logger *zap.Logger) *ConfigStore {
	if slot == "" {
		slot = DefaultConfigSlot
	}
	return &ConfigStore{kv: kv, slot: slot, logger: logger}
}

// Load returns the saved configuration. When nothing is saved it returns
// DefaultConfiguration and found=false.
func (s *ConfigStore) Load(ctx context.Context) (domain.Configuration, bool, error) {
	raw, err := s.kv.Get(ctx, s.slot)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			return domain.DefaultConfiguration(), false, nil
		}
		return domain.DefaultConfiguration(), false, fmt.Errorf("failed to read config slot: %w", err)
	}

	// 先铺默认列名，旧版本保存的配置缺少的字段保持默认值
	cfg := domain.DefaultConfiguration()
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.logger.Warn("Stored configuration is not valid JSON, using defaults",
			zap.String("slot", s.slot),
			zap.Error(err),
		)
		return domain.DefaultConfiguration(), false, nil
	}
	return cfg, true, nil
}

// Save overwrites the slot.
func (s *ConfigStore) Save(ctx context.Context, cfg domain.Configuration) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	if err := s.kv.Set(ctx, s.slot, string(data), 0); err != nil {
		return fmt.Errorf("failed to write config slot: %w", err)
	}

	s.logger.Info("Saved configuration",
		zap.String("slot", s.slot),
		zap.String("table", cfg.TableName),
		zap.Bool("configured", cfg.IsConfigured()),
	)
	return nil
}

// Clear removes the saved configuration.
func (s *ConfigStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.slot)
}
