package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claritycash "github.com/clarity-cash/claritycash"
)

func TestProvider_SignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	p := NewProvider()

	created, err := p.SignUp(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.NotEmpty(t, created.Identity.UID)
	assert.Equal(t, "alice@example.com", created.Identity.Email)
	assert.NotEmpty(t, created.IDToken)

	signedIn, err := p.SignIn(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, created.Identity.UID, signedIn.Identity.UID)
	// Every sign-in issues its own token.
	assert.NotEqual(t, created.IDToken, signedIn.IDToken)
}

func TestProvider_SignUpWeakPassword(t *testing.T) {
	p := NewProvider()
	_, err := p.SignUp(context.Background(), "alice@example.com", "short")
	assert.ErrorIs(t, err, claritycash.ErrWeakPassword)
}

func TestProvider_SignUpDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	p := NewProvider()

	_, err := p.SignUp(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	// Email comparison is case insensitive.
	_, err = p.SignUp(ctx, "Alice@Example.com", "password456")
	assert.ErrorIs(t, err, claritycash.ErrUserExists)
}

func TestProvider_SignInWrongPassword(t *testing.T) {
	ctx := context.Background()
	p := NewProvider()

	_, err := p.SignUp(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = p.SignIn(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, claritycash.ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, claritycash.ErrInvalidCredentials)
}

func TestProvider_VerifyIDToken(t *testing.T) {
	ctx := context.Background()
	p := NewProvider()

	session, err := p.SignUp(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	ident, err := p.VerifyIDToken(ctx, session.IDToken)
	require.NoError(t, err)
	assert.Equal(t, session.Identity.UID, ident.UID)

	_, err = p.VerifyIDToken(ctx, "mem-forged-token")
	assert.ErrorIs(t, err, claritycash.ErrNoSession)
}

func TestProvider_VerifyIDTokenExpired(t *testing.T) {
	ctx := context.Background()
	p := NewProvider()

	session, err := p.SignUp(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = p.VerifyIDToken(ctx, session.IDToken)
	assert.ErrorIs(t, err, claritycash.ErrNoSession)
}

func TestProvider_RevokeSessions(t *testing.T) {
	ctx := context.Background()
	p := NewProvider()

	session, err := p.SignUp(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	p.RevokeSessions(session.Identity.UID)
	_, err = p.VerifyIDToken(ctx, session.IDToken)
	assert.ErrorIs(t, err, claritycash.ErrNoSession)
}

func TestProvider_Lookup(t *testing.T) {
	ctx := context.Background()
	p := NewProvider()

	session, err := p.SignUp(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	ident, err := p.Lookup(ctx, session.Identity.UID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", ident.Email)

	_, err = p.Lookup(ctx, "missing-uid")
	assert.Error(t, err)
}
