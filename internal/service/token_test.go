package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret-test-secret-test-secret", time.Hour)
	userID := uuid.New()

	token, exp, err := m.GenerateAccess(userID)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	gotID, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
}

func TestTokenManager_ClaimsCarryOnlySubject(t *testing.T) {
	m := NewTokenManager("test-secret-test-secret-test-secret", time.Hour)

	token, _, err := m.GenerateAccess(uuid.New())
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.NotContains(t, claims, "role")
	assert.ElementsMatch(t, []string{"sub", "iat", "exp"}, mapKeys(claims))
}

func mapKeys(claims jwt.MapClaims) []string {
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	return keys
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a-secret-a-secret-a-secret-a", time.Hour)
	verifier := NewTokenManager("secret-b-secret-b-secret-b-secret-b", time.Hour)

	token, _, err := issuer.GenerateAccess(uuid.New())
	require.NoError(t, err)

	_, err = verifier.ParseAccess(token)
	assert.Error(t, err)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("test-secret-test-secret-test-secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := m.GenerateAccess(uuid.New())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseAccess(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenManager_RejectsNoneAlgorithm(t *testing.T) {
	m := NewTokenManager("test-secret-test-secret-test-secret", time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": uuid.NewString()})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ParseAccess(raw)
	assert.Error(t, err)
}
