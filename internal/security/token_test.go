package security_test

import (
	"strings"
	"testing"
	"time"

	"estoque/internal/security"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret"

func newIssuer(t *testing.T) *security.JWTIssuer {
	t.Helper()
	issuer, err := security.NewJWTIssuer(testSecret)
	require.NoError(t, err)
	return issuer
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := newIssuer(t)
	in := security.Claims{Subject: 42, Username: "ana"}

	token, err := issuer.Issue(in)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	out, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, in, *out)

	// Verifying twice yields the same claims.
	again, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestJWTIssuer_ExpiresAfter24Hours(t *testing.T) {
	issuedAt := time.Now()
	issuer := newIssuer(t).WithClock(func() time.Time { return issuedAt })

	token, err := issuer.Issue(security.Claims{Subject: 1, Username: "ana"})
	require.NoError(t, err)

	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(issuedAt.Add(24*time.Hour).Unix()), claims["exp"])
	assert.Equal(t, "1", claims["sub"])
	assert.Equal(t, "HS256", parsed.Header["alg"])
}

func TestJWTIssuer_RejectsBadTokens(t *testing.T) {
	issuer := newIssuer(t)
	token, err := issuer.Issue(security.Claims{Subject: 1, Username: "ana"})
	require.NoError(t, err)

	t.Run("altered signature", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err := issuer.Verify(parts[0] + "." + parts[1] + "." + string(sig))
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := security.NewJWTIssuer("another_secret")
		require.NoError(t, err)
		_, err = other.Verify(token)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := issuer.WithClock(func() time.Time { return time.Now().Add(-25 * time.Hour) })
		expired, err := past.Issue(security.Claims{Subject: 1, Username: "ana"})
		require.NoError(t, err)
		_, err = issuer.Verify(expired)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Verify("invalid.token.string")
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(time.Hour).Unix()})
		unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Verify(unsigned)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})
}

func TestNewJWTIssuer_RequiresSecret(t *testing.T) {
	_, err := security.NewJWTIssuer("")
	assert.Error(t, err)
}
