package auth

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/domain"
)

func testContext() context.Context {
	return zerowrap.WithCtx(context.Background(), zerowrap.Default())
}

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{Enabled: true, TokenSecret: []byte("test-secret-32-bytes-long-enough")})
	require.NoError(t, err)
	return svc
}

func TestNewService_RequiresSecretWhenEnabled(t *testing.T) {
	_, err := NewService(Config{Enabled: true})
	assert.Error(t, err)

	svc, err := NewService(Config{})
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())
}

func TestService_GenerateAndValidate(t *testing.T) {
	svc := newService(t)
	ctx := testContext()

	token, err := svc.GenerateToken(ctx, "ci", []string{"containers"}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "ci", claims.Subject)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
	assert.Equal(t, []string{"containers"}, claims.Scopes)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
	assert.True(t, claims.HasScope("containers"))
	assert.False(t, claims.HasScope("images"))
}

func TestService_ValidateToken_Rejects(t *testing.T) {
	svc := newService(t)
	ctx := testContext()

	other, err := NewService(Config{Enabled: true, TokenSecret: []byte("another-secret"), Issuer: "elsewhere"})
	require.NoError(t, err)
	foreign, err := other.GenerateToken(ctx, "ci", nil, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: DefaultIssuer, Subject: "ci"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "not-a-token",
		"foreign secret": foreign,
		"alg none":       unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(ctx, token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestService_ValidateToken_Expiry(t *testing.T) {
	svc := newService(t)
	ctx := testContext()
	now := time.Now()
	svc.now = func() time.Time { return now }

	token, err := svc.GenerateToken(ctx, "ci", nil, time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, token)
	require.NoError(t, err, "cached while valid")

	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "cached entry expires too")

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "parsed again after eviction")
}

func TestService_GenerateToken_NoExpiry(t *testing.T) {
	svc := newService(t)
	ctx := testContext()

	token, err := svc.GenerateToken(ctx, "ops", nil, 0)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.IsZero())
	assert.True(t, claims.HasScope("anything"))

	_, err = svc.GenerateToken(ctx, "", nil, 0)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}
