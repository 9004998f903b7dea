package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/greenplate/campus-client/internal/domain"
)

var (
	ErrUserNotFound       = errors.New("account not found")
	ErrWrongPassword      = errors.New("incorrect password")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrTooManyAttempts    = errors.New("too many attempts, try again later")
	ErrNotSignedIn        = errors.New("not signed in")
	ErrUnavailable        = errors.New("identity provider unreachable")
)

type Config struct {
	APIKey      string
	IdentityURL string
	TokenURL    string
	RefreshSkew time.Duration
	Timeout     time.Duration
}

type credentials struct {
	identity     domain.Identity
	idToken      string
	refreshToken string
	expiresAt    time.Time
}

// Firebase signs users in with the Firebase Authentication REST API and keeps
// their ID token fresh.
type Firebase struct {
	conf  Config
	http  *http.Client
	now   func() time.Time
	group singleflight.Group

	mu    sync.Mutex
	creds *credentials
}

func NewFirebase(conf Config) *Firebase {
	if conf.Timeout == 0 {
		conf.Timeout = 10 * time.Second
	}

	return &Firebase{
		conf: conf,
		http: &http.Client{Timeout: conf.Timeout},
		now:  time.Now,
	}
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	return f.passwordCall(ctx, "accounts:signInWithPassword", email, password)
}

func (f *Firebase) SignUp(ctx context.Context, email, password string) (domain.Identity, error) {
	return f.passwordCall(ctx, "accounts:signUp", email, password)
}

func (f *Firebase) passwordCall(ctx context.Context, method, email, password string) (domain.Identity, error) {
	body := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	var resp signInResponse
	endpoint := fmt.Sprintf("%s/%s?key=%s", strings.TrimRight(f.conf.IdentityURL, "/"), method, url.QueryEscape(f.conf.APIKey))
	if err := f.postJSON(ctx, endpoint, body, &resp); err != nil {
		return domain.Identity{}, err
	}

	identity := domain.Identity{UID: resp.LocalID, Email: resp.Email, DisplayName: resp.DisplayName}
	if identity.Email == "" {
		identity.Email = email
	}
	if identity.DisplayName == "" {
		identity.DisplayName = strings.SplitN(identity.Email, "@", 2)[0]
	}

	f.mu.Lock()
	f.creds = &credentials{
		identity:     identity,
		idToken:      resp.IDToken,
		refreshToken: resp.RefreshToken,
		expiresAt:    f.expiry(resp.IDToken, resp.ExpiresIn),
	}
	f.mu.Unlock()

	zap.L().Info("signed in", zap.String("uid", identity.UID))

	return identity, nil
}

// Token returns a valid ID token, refreshing it when force is set or when it
// expires within the configured skew. Concurrent refreshes share one request.
func (f *Firebase) Token(ctx context.Context, force bool) (string, error) {
	f.mu.Lock()
	creds := f.creds
	f.mu.Unlock()

	if creds == nil {
		return "", ErrNotSignedIn
	}
	if !force && f.now().Add(f.conf.RefreshSkew).Before(creds.expiresAt) {
		return creds.idToken, nil
	}

	v, err, _ := f.group.Do(creds.refreshToken, func() (any, error) {
		if !force {
			if tok, ok := f.freshToken(); ok {
				return tok, nil
			}
		}
		return f.refresh(ctx, creds)
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// freshToken returns the cached token if a refresh finished in the meantime.
func (f *Firebase) freshToken() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.creds == nil || !f.now().Add(f.conf.RefreshSkew).Before(f.creds.expiresAt) {
		return "", false
	}

	return f.creds.idToken, true
}

func (f *Firebase) refresh(ctx context.Context, creds *credentials) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", creds.refreshToken)

	endpoint := fmt.Sprintf("%s?key=%s", f.conf.TokenURL, url.QueryEscape(f.conf.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp refreshResponse
	if err := f.send(req, &resp); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// A sign-out or another sign-in while refreshing wins over this result.
	if f.creds == nil || f.creds.refreshToken != creds.refreshToken {
		return "", ErrNotSignedIn
	}
	f.creds.idToken = resp.IDToken
	if resp.RefreshToken != "" {
		f.creds.refreshToken = resp.RefreshToken
	}
	f.creds.expiresAt = f.expiry(resp.IDToken, resp.ExpiresIn)

	zap.L().Debug("id token refreshed", zap.Time("expires_at", f.creds.expiresAt))

	return resp.IDToken, nil
}

func (f *Firebase) CurrentIdentity() (domain.Identity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.creds == nil {
		return domain.Identity{}, false
	}

	return f.creds.identity, true
}

func (f *Firebase) SignOut(context.Context) error {
	f.mu.Lock()
	f.creds = nil
	f.mu.Unlock()

	return nil
}

// expiry prefers the token's own exp claim and falls back to expiresIn seconds.
// The signature is not checked here; the backend verifies tokens.
func (f *Firebase) expiry(idToken, expiresIn string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}

	if secs, err := time.ParseDuration(expiresIn + "s"); err == nil {
		return f.now().Add(secs)
	}

	return f.now()
}

func (f *Firebase) postJSON(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return f.send(req, out)
}

func (f *Firebase) send(req *http.Request, out any) error {
	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = json.Unmarshal(data, &e)
		return mapError(e.Error.Message, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return nil
}

// mapError turns Firebase error codes such as "EMAIL_NOT_FOUND" or
// "WEAK_PASSWORD : Password should be at least 6 characters" into sentinels.
func mapError(message string, status int) error {
	code, _, _ := strings.Cut(message, " ")
	switch code {
	case "EMAIL_NOT_FOUND", "USER_NOT_FOUND":
		return ErrUserNotFound
	case "INVALID_PASSWORD":
		return ErrWrongPassword
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "MISSING_PASSWORD", "USER_DISABLED":
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, strings.ToLower(code))
	case "EMAIL_EXISTS":
		return ErrEmailExists
	case "WEAK_PASSWORD":
		return ErrWeakPassword
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return ErrTooManyAttempts
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "USER_NOT_FOUND_FOR_TOKEN", "INVALID_ID_TOKEN":
		return ErrNotSignedIn
	}

	if message == "" {
		message = http.StatusText(status)
	}

	return fmt.Errorf("identity provider returned %d: %s", status, message)
}
