package token

import (
	"testing"
	"time"

	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity() identitydomain.Identity {
	return identitydomain.Identity{
		User: identitydomain.User{
			ID:       12345,
			Username: "neema",
			Email:    "neema@example.com",
		},
		Role: identitydomain.RoleCustomer,
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := NewIssuer("  ", time.Minute, time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssuePairRoundTrip(t *testing.T) {
	issuer, err := NewIssuer("test-secret", 30*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	pair, err := issuer.IssuePair(testIdentity())
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	claims, err := issuer.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "neema", claims.Username)
	assert.Equal(t, "neema@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "12345", claims.Subject)
	assert.Equal(t, TypeAccess, claims.TokenType)

	refreshClaims, err := issuer.ParseRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, refreshClaims.TokenType)
}

func TestParseRejectsWrongType(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Minute, time.Hour)
	require.NoError(t, err)

	pair, err := issuer.IssuePair(testIdentity())
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrWrongType)
	_, err = issuer.ParseRefresh(pair.Access)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	a, err := NewIssuer("secret-a", time.Minute, time.Hour)
	require.NoError(t, err)
	b, err := NewIssuer("secret-b", time.Minute, time.Hour)
	require.NoError(t, err)

	pair, err := a.IssuePair(testIdentity())
	require.NoError(t, err)

	_, err = b.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	issuer, err := NewIssuer("test-secret", -time.Minute, time.Hour)
	require.NoError(t, err)
	// Negative TTLs fall back to defaults, so force expiry directly.
	issuer.accessTTL = -time.Minute

	pair, err := issuer.IssuePair(testIdentity())
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = issuer.ParseAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
