package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	claritycash "github.com/clarity-cash/claritycash"
	"github.com/clarity-cash/claritycash/domain"
)

const defaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// RESTClient talks to the Identity Toolkit REST API with the public web
// API key. It needs no service account, so clarityctl can use it directly
// to establish a session.
type RESTClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewRESTClient creates a client; endpointURL may be empty for the
// production endpoint.
func NewRESTClient(apiKey, endpointURL string) *RESTClient {
	if endpointURL == "" {
		endpointURL = defaultIdentityToolkitURL
	}
	return &RESTClient{
		apiKey:     apiKey,
		endpoint:   endpointURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SignIn authenticates with email and password.
func (r *RESTClient) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return r.credentialCall(ctx, "accounts:signInWithPassword", email, password)
}

// SignUp registers a new account.
func (r *RESTClient) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	return r.credentialCall(ctx, "accounts:signUp", email, password)
}

type identityToolkitResponse struct {
	IDToken   string `json:"idToken"`
	LocalID   string `json:"localId"`
	Email     string `json:"email"`
	ExpiresIn string `json:"expiresIn"`
}

type identityToolkitError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (r *RESTClient) credentialCall(ctx context.Context, method, email, password string) (*domain.Session, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?key=%s", r.endpoint, method, r.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var toolkitErr identityToolkitError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&toolkitErr); decodeErr != nil {
			return nil, fmt.Errorf("identity toolkit error, status %d", resp.StatusCode)
		}
		return nil, mapToolkitError(toolkitErr.Error.Message)
	}

	var result identityToolkitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode identity toolkit response: %w", err)
	}

	expiresIn, _ := strconv.Atoi(result.ExpiresIn)
	session := &domain.Session{
		Identity: domain.UserIdentity{
			UID:   result.LocalID,
			Email: result.Email,
		},
		IDToken:   result.IDToken,
		ExpiresAt: time.Now().Add(time.Duration(expiresIn) * time.Second),
	}

	log.Ctx(ctx).Debug().
		Str("uid", session.Identity.UID).
		Str("id_token_hash", claritycash.HashToken(session.IDToken)).
		Msg("identity provider session established")

	return session, nil
}

// mapToolkitError translates Identity Toolkit error codes onto the root
// sentinel errors. Messages sometimes carry a suffix after a colon
// ("WEAK_PASSWORD : Password should be ..."), so match on the prefix.
func mapToolkitError(message string) error {
	code := message
	if idx := strings.IndexAny(message, " :"); idx > 0 {
		code = message[:idx]
	}

	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return claritycash.ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return claritycash.ErrUserExists
	case "WEAK_PASSWORD":
		return claritycash.ErrWeakPassword
	default:
		return fmt.Errorf("identity toolkit rejected request: %s", code)
	}
}
