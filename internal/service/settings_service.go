package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/legal-desk/internal/domain"
	"github.com/spec-kit/legal-desk/internal/repository"
	apperrors "github.com/spec-kit/legal-desk/pkg/util"
)

const settingsCacheKey = "legal-desk:settings:reminder"

// SettingsService resolves configurable business thresholds from the settings
// table, with a Redis read-through cache. Operations receive a plain snapshot
// so the core never touches the store mid-flight.
type SettingsService struct {
	repo     repository.SettingsRepository
	cache    *redis.Client
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewSettingsService constructs the service. The cache client may be nil.
func NewSettingsService(repo repository.SettingsRepository, cache *redis.Client, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{
		repo:     repo,
		cache:    cache,
		logger:   logger,
		cacheTTL: time.Minute,
	}
}

// ReminderSettings returns the current threshold snapshot, falling back to
// defaults for missing keys. Store errors degrade to defaults rather than
// failing the calling operation.
func (s *SettingsService) ReminderSettings(ctx context.Context) domain.ReminderSettings {
	if cached, ok := s.fromCache(ctx); ok {
		return cached
	}

	cfg := domain.DefaultReminderSettings()
	if s.repo == nil {
		return cfg
	}
	if v, ok := s.getInt(ctx, domain.SettingWarningDays); ok {
		cfg.WarningDays = v
	}
	if v, ok := s.getInt(ctx, domain.SettingCriticalDays); ok {
		cfg.CriticalDays = v
	}
	if v, ok := s.getBool(ctx, domain.SettingNotifyLegal); ok {
		cfg.NotifyLegalRole = v
	}
	if v, ok := s.getBool(ctx, domain.SettingNotifyManagement); ok {
		cfg.NotifyManagementRole = v
	}
	if v, ok := s.getString(ctx, domain.SettingLegalTeamEmail); ok {
		cfg.LegalTeamEmail = v
	}
	if v, ok := s.getString(ctx, domain.SettingExcludedDocTypes); ok {
		for _, raw := range strings.Split(v, ",") {
			dt := domain.DocumentType(strings.ToUpper(strings.TrimSpace(raw)))
			if domain.ValidDocumentType(dt) {
				cfg.ExcludedDocTypes = append(cfg.ExcludedDocTypes, dt)
			}
		}
	}

	s.storeCache(ctx, cfg)
	return cfg
}

// Set writes a known setting key and invalidates the cache.
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	switch key {
	case domain.SettingWarningDays, domain.SettingCriticalDays:
		if _, err := strconv.Atoi(value); err != nil {
			return apperrors.NewValidationError("value must be an integer", map[string]any{"key": key})
		}
	case domain.SettingNotifyLegal, domain.SettingNotifyManagement:
		if _, err := strconv.ParseBool(value); err != nil {
			return apperrors.NewValidationError("value must be a boolean", map[string]any{"key": key})
		}
	case domain.SettingLegalTeamEmail, domain.SettingExcludedDocTypes:
	default:
		return apperrors.NewNotFound("setting", map[string]any{"key": key})
	}
	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// All returns every stored setting.
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	return s.repo.All(ctx)
}

func (s *SettingsService) getString(ctx context.Context, key string) (string, bool) {
	value, found, err := s.repo.Get(ctx, key)
	if err != nil {
		s.logger.Warn("settings read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return value, found
}

func (s *SettingsService) getInt(ctx context.Context, key string) (int, bool) {
	raw, found := s.getString(ctx, key)
	if !found {
		return 0, false
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn("settings value not an integer", zap.String("key", key), zap.String("value", raw))
		return 0, false
	}
	return parsed, true
}

func (s *SettingsService) getBool(ctx context.Context, key string) (bool, bool) {
	raw, found := s.getString(ctx, key)
	if !found {
		return false, false
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		s.logger.Warn("settings value not a boolean", zap.String("key", key), zap.String("value", raw))
		return false, false
	}
	return parsed, true
}

func (s *SettingsService) fromCache(ctx context.Context) (domain.ReminderSettings, bool) {
	if s.cache == nil {
		return domain.ReminderSettings{}, false
	}
	raw, err := s.cache.Get(ctx, settingsCacheKey).Bytes()
	if err != nil {
		return domain.ReminderSettings{}, false
	}
	var cfg domain.ReminderSettings
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return domain.ReminderSettings{}, false
	}
	return cfg, true
}

func (s *SettingsService) storeCache(ctx context.Context, cfg domain.ReminderSettings) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, settingsCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("settings cache write failed", zap.Error(err))
	}
}

func (s *SettingsService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, settingsCacheKey).Err(); err != nil {
		s.logger.Debug("settings cache invalidation failed", zap.Error(err))
	}
}
