// Package firebase implements identity.Provider against Firebase
// Authentication: Admin SDK for server-side ID token verification and user
// lookup, Identity Toolkit REST for the password sign-in and sign-up flows
// the Admin SDK does not expose.
package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/clarity-cash/claritycash/domain"
	"github.com/clarity-cash/claritycash/identity"
)

// Config carries the Firebase project settings. The credentials file is
// the service account used by the Admin SDK; the API key is the public
// web API key used by the REST sign-in endpoints.
type Config struct {
	ProjectID       string
	APIKey          string
	CredentialsFile string

	// EndpointURL overrides the Identity Toolkit base URL (tests, emulator).
	EndpointURL string
}

// Provider implements identity.Provider on Firebase Authentication.
type Provider struct {
	auth *auth.Client
	rest *RESTClient
}

var _ identity.Provider = (*Provider)(nil)

// NewProvider initializes the Admin SDK app and auth client.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	return &Provider{
		auth: authClient,
		rest: NewRESTClient(cfg.APIKey, cfg.EndpointURL),
	}, nil
}

// VerifyIDToken implements identity.Provider.
func (p *Provider) VerifyIDToken(ctx context.Context, idToken string) (*domain.UserIdentity, error) {
	token, err := p.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("id token verification failed: %w", err)
	}

	ident := &domain.UserIdentity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		ident.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		ident.DisplayName = name
	}
	return ident, nil
}

// Lookup implements identity.Provider.
func (p *Provider) Lookup(ctx context.Context, uid string) (*domain.UserIdentity, error) {
	record, err := p.auth.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	return &domain.UserIdentity{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
	}, nil
}

// SignIn implements identity.Provider.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return p.rest.SignIn(ctx, email, password)
}

// SignUp implements identity.Provider.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	return p.rest.SignUp(ctx, email, password)
}
