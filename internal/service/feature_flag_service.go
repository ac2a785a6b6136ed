package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type flagStore interface {
	ListFlags(ctx context.Context) ([]models.FeatureFlag, error)
	GetFlagByKey(ctx context.Context, key string) (*models.FeatureFlag, error)
	UpdateFlagDefault(ctx context.Context, flagID string, enabled bool) error
	ListOverrides(ctx context.Context, companyID string) ([]models.CompanyFeatureOverride, error)
	UpsertOverride(ctx context.Context, o *models.CompanyFeatureOverride) error
	DeleteOverride(ctx context.Context, companyID, flagID string) error
}

type flagCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type flagAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// FeatureFlagService resolves effective flag values per company: the
// company's override when one exists, otherwise the platform default.
// Resolved maps are cached in Redis and invalidated on every override write.
type FeatureFlagService struct {
	flags  flagStore
	cache  flagCache
	audit  flagAuditLogger
	ttl    time.Duration
	logger *zap.Logger
}

// NewFeatureFlagService constructs a FeatureFlagService.
func NewFeatureFlagService(flags flagStore, cache flagCache, audit flagAuditLogger, ttl time.Duration, logger *zap.Logger) *FeatureFlagService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeatureFlagService{flags: flags, cache: cache, audit: audit, ttl: ttl, logger: logger}
}

func flagCacheKey(companyID string) string {
	return fmt.Sprintf("flags:effective:%s", companyID)
}

// Effective returns the resolved flag map for a company.
func (s *FeatureFlagService) Effective(ctx context.Context, companyID string) (*dto.EffectiveFlagsResponse, error) {
	resolved, err := s.resolve(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &dto.EffectiveFlagsResponse{CompanyID: companyID, Flags: resolved}, nil
}

// Enabled resolves a single flag for a company. Unknown keys resolve to
// false rather than erroring so feature checks stay cheap at call sites.
func (s *FeatureFlagService) Enabled(ctx context.Context, companyID, key string) (bool, error) {
	resolved, err := s.resolve(ctx, companyID)
	if err != nil {
		return false, err
	}
	return resolved[key], nil
}

// List returns every flag with the company's override and effective value,
// for the admin flag screen. Internal flags are filtered for non-superadmins.
func (s *FeatureFlagService) List(ctx context.Context, companyID string, includeInternal bool) ([]models.FeatureFlagView, error) {
	flags, err := s.flags.ListFlags(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feature flags")
	}
	overrides, err := s.flags.ListOverrides(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list flag overrides")
	}
	byFlag := make(map[string]models.CompanyFeatureOverride, len(overrides))
	for _, o := range overrides {
		byFlag[o.FlagID] = o
	}

	views := make([]models.FeatureFlagView, 0, len(flags))
	for _, flag := range flags {
		if flag.Internal && !includeInternal {
			continue
		}
		view := models.FeatureFlagView{FeatureFlag: flag, Effective: flag.DefaultEnabled}
		if o, ok := byFlag[flag.ID]; ok {
			override := o
			view.Override = &override
			view.Effective = o.Enabled
		}
		views = append(views, view)
	}
	return views, nil
}

// SetOverride pins a flag for one company and invalidates the cached map.
func (s *FeatureFlagService) SetOverride(ctx context.Context, companyID, flagKey, actorID string, req dto.SetOverrideRequest) (*models.CompanyFeatureOverride, error) {
	flag, err := s.flags.GetFlagByKey(ctx, flagKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "feature flag not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feature flag")
	}

	override := &models.CompanyFeatureOverride{
		CompanyID: companyID,
		FlagID:    flag.ID,
		Enabled:   req.Enabled,
		Reason:    req.Reason,
		CreatedBy: &actorID,
	}
	if err := s.flags.UpsertOverride(ctx, override); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save flag override")
	}
	s.invalidate(ctx, companyID)
	s.emitAudit(ctx, actorID, flag.Key, companyID)
	return override, nil
}

// SetDefault flips a flag's platform-wide default and invalidates every
// company's cached map, since the change touches all tenants without an
// override.
func (s *FeatureFlagService) SetDefault(ctx context.Context, flagKey, actorID string, req dto.SetDefaultRequest) (*models.FeatureFlag, error) {
	flag, err := s.flags.GetFlagByKey(ctx, flagKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "feature flag not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feature flag")
	}
	if err := s.flags.UpdateFlagDefault(ctx, flag.ID, req.Enabled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update flag default")
	}
	flag.DefaultEnabled = req.Enabled

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, flagCacheKey("*")); err != nil {
			s.logger.Warn("flag cache invalidation failed", zap.String("flag", flagKey), zap.Error(err))
		}
	}
	if s.audit != nil {
		resource := fmt.Sprintf("feature_flags/%s", flag.Key)
		log := &models.AuditLog{UserID: &actorID, Action: models.AuditActionFlagDefault, Resource: resource}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to record flag default audit log", zap.Error(err))
		}
	}
	return flag, nil
}

// ClearOverride removes a company's override so the default applies again.
func (s *FeatureFlagService) ClearOverride(ctx context.Context, companyID, flagKey, actorID string) error {
	flag, err := s.flags.GetFlagByKey(ctx, flagKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "feature flag not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feature flag")
	}
	if err := s.flags.DeleteOverride(ctx, companyID, flag.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear flag override")
	}
	s.invalidate(ctx, companyID)
	s.emitAudit(ctx, actorID, flag.Key, companyID)
	return nil
}

func (s *FeatureFlagService) resolve(ctx context.Context, companyID string) (map[string]bool, error) {
	cacheKey := flagCacheKey(companyID)
	if s.cache != nil {
		var cached map[string]bool
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("flag cache read failed", zap.String("companyId", companyID), zap.Error(err))
		}
	}

	flags, err := s.flags.ListFlags(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feature flags")
	}
	overrides, err := s.flags.ListOverrides(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list flag overrides")
	}
	byFlag := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		byFlag[o.FlagID] = o.Enabled
	}

	resolved := make(map[string]bool, len(flags))
	for _, flag := range flags {
		value := flag.DefaultEnabled
		if v, ok := byFlag[flag.ID]; ok {
			value = v
		}
		resolved[flag.Key] = value
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resolved, s.ttl); err != nil {
			s.logger.Warn("flag cache write failed", zap.String("companyId", companyID), zap.Error(err))
		}
	}
	return resolved, nil
}

func (s *FeatureFlagService) invalidate(ctx context.Context, companyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, flagCacheKey(companyID)); err != nil {
		s.logger.Warn("flag cache invalidation failed", zap.String("companyId", companyID), zap.Error(err))
	}
}

func (s *FeatureFlagService) emitAudit(ctx context.Context, actorID, flagKey, companyID string) {
	if s.audit == nil {
		return
	}
	resource := fmt.Sprintf("feature_flags/%s", flagKey)
	log := &models.AuditLog{UserID: &actorID, Action: models.AuditActionFlagOverride, Resource: resource, ResourceID: &companyID}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record flag override audit log", zap.Error(err))
	}
}
