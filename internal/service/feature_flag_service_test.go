package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type mockFlagStore struct {
	flags       []models.FeatureFlag
	overrides   []models.CompanyFeatureOverride
	listCalls   int
	upserted    *models.CompanyFeatureOverride
	deleted     bool
	defaultSets int
}

func (m *mockFlagStore) ListFlags(_ context.Context) ([]models.FeatureFlag, error) {
	m.listCalls++
	return m.flags, nil
}

func (m *mockFlagStore) GetFlagByKey(_ context.Context, key string) (*models.FeatureFlag, error) {
	for i := range m.flags {
		if m.flags[i].Key == key {
			return &m.flags[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockFlagStore) UpdateFlagDefault(_ context.Context, flagID string, enabled bool) error {
	m.defaultSets++
	for i := range m.flags {
		if m.flags[i].ID == flagID {
			m.flags[i].DefaultEnabled = enabled
		}
	}
	return nil
}

func (m *mockFlagStore) ListOverrides(_ context.Context, _ string) ([]models.CompanyFeatureOverride, error) {
	return m.overrides, nil
}

func (m *mockFlagStore) UpsertOverride(_ context.Context, o *models.CompanyFeatureOverride) error {
	m.upserted = o
	m.overrides = append(m.overrides, *o)
	return nil
}

func (m *mockFlagStore) DeleteOverride(_ context.Context, _, _ string) error {
	m.deleted = true
	return nil
}

type stubFlagCache struct {
	store   map[string][]byte
	deleted []string
}

func (c *stubFlagCache) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := c.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (c *stubFlagCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = payload
	return nil
}

func (c *stubFlagCache) Delete(_ context.Context, key string) error {
	delete(c.store, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *stubFlagCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.store {
		if strings.HasPrefix(key, prefix) {
			delete(c.store, key)
			c.deleted = append(c.deleted, key)
		}
	}
	return nil
}

func newFlagFixture() (*FeatureFlagService, *mockFlagStore, *stubFlagCache, *mockAuditLogger) {
	store := &mockFlagStore{flags: []models.FeatureFlag{
		{ID: "flag-1", Key: models.FlagDriverPayments, DefaultEnabled: false},
		{ID: "flag-2", Key: models.FlagVehicleCredentials, DefaultEnabled: true},
		{ID: "flag-3", Key: "beta_dashboard", DefaultEnabled: false, Internal: true},
	}}
	cache := &stubFlagCache{}
	audit := &mockAuditLogger{}
	svc := NewFeatureFlagService(store, cache, audit, time.Minute, zap.NewNop())
	return svc, store, cache, audit
}

func TestFlagOverrideBeatsDefault(t *testing.T) {
	svc, store, _, _ := newFlagFixture()
	store.overrides = []models.CompanyFeatureOverride{{CompanyID: "company-1", FlagID: "flag-1", Enabled: true}}

	enabled, err := svc.Enabled(context.Background(), "company-1", models.FlagDriverPayments)
	require.NoError(t, err)
	assert.True(t, enabled)

	// Untouched flags keep their defaults.
	enabled, err = svc.Enabled(context.Background(), "company-1", models.FlagVehicleCredentials)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestFlagUnknownKeyResolvesFalse(t *testing.T) {
	svc, _, _, _ := newFlagFixture()

	enabled, err := svc.Enabled(context.Background(), "company-1", "no_such_flag")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestFlagResolutionIsCached(t *testing.T) {
	svc, store, cache, _ := newFlagFixture()

	_, err := svc.Effective(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)
	assert.Contains(t, cache.store, "flags:effective:company-1")

	// Second resolve hits the cache, not the store.
	_, err = svc.Effective(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)
}

func TestFlagSetOverrideInvalidatesCache(t *testing.T) {
	svc, _, cache, audit := newFlagFixture()

	_, err := svc.Effective(context.Background(), "company-1")
	require.NoError(t, err)
	require.Contains(t, cache.store, "flags:effective:company-1")

	override, err := svc.SetOverride(context.Background(), "company-1", models.FlagDriverPayments, "admin-1", dto.SetOverrideRequest{Enabled: true})
	require.NoError(t, err)

	assert.Equal(t, "flag-1", override.FlagID)
	assert.NotContains(t, cache.store, "flags:effective:company-1")
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionFlagOverride, audit.logs[0].Action)

	// The next resolution sees the override.
	enabled, err := svc.Enabled(context.Background(), "company-1", models.FlagDriverPayments)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestFlagSetOverrideUnknownFlag(t *testing.T) {
	svc, _, _, _ := newFlagFixture()

	_, err := svc.SetOverride(context.Background(), "company-1", "no_such_flag", "admin-1", dto.SetOverrideRequest{Enabled: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFlagSetDefaultInvalidatesAllCompanies(t *testing.T) {
	svc, store, cache, audit := newFlagFixture()

	_, err := svc.Effective(context.Background(), "company-1")
	require.NoError(t, err)
	_, err = svc.Effective(context.Background(), "company-2")
	require.NoError(t, err)
	require.Len(t, cache.store, 2)

	flag, err := svc.SetDefault(context.Background(), models.FlagDriverPayments, "root-1", dto.SetDefaultRequest{Enabled: true})
	require.NoError(t, err)

	assert.True(t, flag.DefaultEnabled)
	assert.Equal(t, 1, store.defaultSets)
	assert.Empty(t, cache.store)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionFlagDefault, audit.logs[0].Action)

	// Companies without an override pick up the new default.
	enabled, err := svc.Enabled(context.Background(), "company-2", models.FlagDriverPayments)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestFlagSetDefaultUnknownFlag(t *testing.T) {
	svc, _, _, _ := newFlagFixture()

	_, err := svc.SetDefault(context.Background(), "no_such_flag", "root-1", dto.SetDefaultRequest{Enabled: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFlagClearOverrideRestoresDefault(t *testing.T) {
	svc, store, cache, _ := newFlagFixture()
	store.overrides = []models.CompanyFeatureOverride{{CompanyID: "company-1", FlagID: "flag-1", Enabled: true}}

	err := svc.ClearOverride(context.Background(), "company-1", models.FlagDriverPayments, "admin-1")
	require.NoError(t, err)
	assert.True(t, store.deleted)
	assert.Contains(t, cache.deleted, "flags:effective:company-1")
}

func TestFlagListFiltersInternal(t *testing.T) {
	svc, store, _, _ := newFlagFixture()
	store.overrides = []models.CompanyFeatureOverride{{CompanyID: "company-1", FlagID: "flag-2", Enabled: false}}

	views, err := svc.List(context.Background(), "company-1", false)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.False(t, v.Internal)
		if v.Key == models.FlagVehicleCredentials {
			require.NotNil(t, v.Override)
			assert.False(t, v.Effective)
		}
	}

	views, err = svc.List(context.Background(), "company-1", true)
	require.NoError(t, err)
	assert.Len(t, views, 3)
}
