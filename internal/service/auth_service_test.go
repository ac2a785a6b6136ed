package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type mockAuthRepo struct {
	user          *models.User
	refreshTokens map[string]*models.RefreshToken
	revokedAll    int
	auditActions  []string
	passwordHash  string
}

func (m *mockAuthRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if m.user == nil || m.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(_ context.Context, _ string, _ time.Time) error {
	return nil
}

func (m *mockAuthRepo) UpdatePassword(_ context.Context, _, passwordHash string, _ time.Time) error {
	m.passwordHash = passwordHash
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(_ context.Context, _ string) error {
	m.revokedAll++
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = map[string]*models.RefreshToken{}
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	t, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(_ context.Context, id string, revokedAt time.Time) error {
	for _, t := range m.refreshTokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	m.auditActions = append(m.auditActions, log.Action)
	return nil
}

func newAuthFixture(t *testing.T, password string) (*AuthService, *mockAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	company := "company-1"
	repo := &mockAuthRepo{user: &models.User{
		ID:           "user-1",
		CompanyID:    &company,
		Email:        "driver@fleetpass.io",
		PasswordHash: string(hash),
		FullName:     "Dana Driver",
		Role:         models.RoleDriver,
		Active:       true,
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "fleetpass-test",
	})
	return svc, repo
}

func TestAuthLoginIssuesValidTokenPair(t *testing.T) {
	svc, repo := newAuthFixture(t, "correct horse")

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "driver@fleetpass.io", Password: "correct horse"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Contains(t, repo.auditActions, models.AuditActionLogin)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleDriver, claims.Role)
	require.NotNil(t, claims.CompanyID)
	assert.Equal(t, "company-1", *claims.CompanyID)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t, "correct horse")

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "driver@fleetpass.io", Password: "battery staple"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t, "correct horse")
	repo.user.Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "driver@fleetpass.io", Password: "correct horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthRefreshRotatesToken(t *testing.T) {
	svc, repo := newAuthFixture(t, "correct horse")

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "driver@fleetpass.io", Password: "correct horse"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The used token was revoked and cannot be replayed.
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked)
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthRefreshExpiredToken(t *testing.T) {
	svc, repo := newAuthFixture(t, "correct horse")
	repo.refreshTokens = map[string]*models.RefreshToken{
		"stale": {ID: "rt-1", UserID: "user-1", Token: "stale", ExpiresAt: time.Now().UTC().Add(-time.Hour)},
	}

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthLogoutChecksOwnership(t *testing.T) {
	svc, repo := newAuthFixture(t, "correct horse")
	repo.refreshTokens = map[string]*models.RefreshToken{
		"tok": {ID: "rt-1", UserID: "user-1", Token: "tok", ExpiresAt: time.Now().UTC().Add(time.Hour)},
	}

	err := svc.Logout(context.Background(), "tok", "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Logout(context.Background(), "tok", "user-1"))
	assert.True(t, repo.refreshTokens["tok"].Revoked)
	assert.Contains(t, repo.auditActions, models.AuditActionLogout)
}

func TestAuthChangePassword(t *testing.T) {
	svc, repo := newAuthFixture(t, "correct horse")

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "a new password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	err = svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "correct horse",
		NewPassword: "a new password",
	})
	require.NoError(t, err)
	require.NotEmpty(t, repo.passwordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordHash), []byte("a new password")))
	assert.Equal(t, 1, repo.revokedAll)
	assert.Contains(t, repo.auditActions, models.AuditActionPasswordChange)
}

func TestAuthValidateTokenRejectsForeignSignature(t *testing.T) {
	svc, _ := newAuthFixture(t, "correct horse")
	other := NewAuthService(&mockAuthRepo{}, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Minute,
	})

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "driver@fleetpass.io", Password: "correct horse"})
	require.NoError(t, err)

	_, err = other.ValidateToken(login.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
