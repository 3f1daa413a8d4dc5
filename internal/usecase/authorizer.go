package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/infra/config"
	"github.com/arklim/casting-agency/internal/infra/security"
	"github.com/arklim/casting-agency/internal/infra/telemetry"
)

// AuthErrorKind classifies why a request could not be authorized.
type AuthErrorKind string

const (
	AuthMissingHeader     AuthErrorKind = "missing_header"
	AuthMalformedHeader   AuthErrorKind = "malformed_header"
	AuthInvalidToken      AuthErrorKind = "invalid_token"
	AuthExpiredToken      AuthErrorKind = "expired_token"
	AuthInsufficientScope AuthErrorKind = "insufficient_scope"
)

var authErrorCodes = map[AuthErrorKind]string{
	AuthMissingHeader:     "authorization_header_missing",
	AuthMalformedHeader:   "invalid_header",
	AuthInvalidToken:      "invalid_token",
	AuthExpiredToken:      "token_expired",
	AuthInsufficientScope: "unauthorized",
}

// AuthError is returned by Authorize for every rejected request.
type AuthError struct {
	Kind        AuthErrorKind
	Code        string
	Description string
	cause       error
}

func newAuthError(kind AuthErrorKind, description string, cause error) *AuthError {
	return &AuthError{
		Kind:        kind,
		Code:        authErrorCodes[kind],
		Description: description,
		cause:       cause,
	}
}

func (e *AuthError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *AuthError) Unwrap() error {
	return e.cause
}

// StatusCode is 403 for missing scope and 401 for every credential problem.
func (e *AuthError) StatusCode() int {
	if e.Kind == AuthInsufficientScope {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}

// Payload returns the fields merged into the error response body.
func (e *AuthError) Payload() map[string]any {
	return map[string]any{
		"code":        e.Code,
		"description": e.Description,
	}
}

// Authorizer verifies bearer tokens and checks them for a required permission.
type Authorizer struct {
	keys      security.KeyProvider
	issuer    string
	audiences []string
	metrics   *telemetry.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthorizer constructs an Authorizer. Issuer and audience are only checked when configured.
func NewAuthorizer(cfg config.AuthSettings, keys security.KeyProvider, metrics *telemetry.Metrics, logger *zap.Logger) *Authorizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	audiences := make([]string, 0, len(cfg.Audience))
	for _, aud := range cfg.Audience {
		if aud = strings.TrimSpace(aud); aud != "" {
			audiences = append(audiences, aud)
		}
	}

	return &Authorizer{
		keys:      keys,
		issuer:    strings.TrimSpace(cfg.Issuer),
		audiences: audiences,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the authorizer clock for deterministic tests.
func (a *Authorizer) WithClock(clock func() time.Time) {
	if clock != nil {
		a.now = clock
	}
}

// Authorize validates the Authorization header value and requires the permission.
// A non-nil error is always an *AuthError.
func (a *Authorizer) Authorize(_ context.Context, header string, required domain.Permission) (*security.AccessTokenClaims, error) {
	claims, authErr := a.authorize(header, required)
	if authErr != nil {
		a.metrics.ObserveAuthorization(required.String(), authErr.Code)
		a.logger.Debug("authorization rejected",
			zap.String("permission", required.String()),
			zap.String("code", authErr.Code),
			zap.Error(authErr.cause),
		)
		return nil, authErr
	}

	a.metrics.ObserveAuthorization(required.String(), "granted")
	return claims, nil
}

func (a *Authorizer) authorize(header string, required domain.Permission) (*security.AccessTokenClaims, *AuthError) {
	token, authErr := bearerToken(header)
	if authErr != nil {
		return nil, authErr
	}

	claims, authErr := a.verify(token)
	if authErr != nil {
		return nil, authErr
	}

	if !HasPermission(claims, required) {
		return nil, newAuthError(AuthInsufficientScope, "Permission not found.", nil)
	}

	return claims, nil
}

func bearerToken(header string) (string, *AuthError) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", newAuthError(AuthMissingHeader, "Authorization header is expected.", nil)
	}

	parts := strings.Fields(header)
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", newAuthError(AuthMalformedHeader, `Authorization header must start with "Bearer".`, nil)
	}
	if len(parts) == 1 {
		return "", newAuthError(AuthMalformedHeader, "Token not found.", nil)
	}
	if len(parts) > 2 {
		return "", newAuthError(AuthMalformedHeader, "Authorization header must be bearer token.", nil)
	}

	return parts[1], nil
}

func (a *Authorizer) verify(token string) (*security.AccessTokenClaims, *AuthError) {
	if a.keys == nil {
		return nil, newAuthError(AuthInvalidToken, "Unable to find the appropriate key.", errors.New("key provider not configured"))
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(a.issuer))
	}

	claims := &security.AccessTokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		method, ok := t.Method.(*jwt.SigningMethodRSA)
		if !ok || method == nil || method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		kid, _ := t.Header["kid"].(string)
		kid = strings.TrimSpace(kid)
		if kid == "" {
			return nil, fmt.Errorf("kid header not found")
		}

		return a.keys.GetVerificationKey(kid)
	}, parserOptions...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, newAuthError(AuthExpiredToken, "Token expired.", err)
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, newAuthError(AuthInvalidToken, "Incorrect claims. Please, check the audience and issuer.", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, newAuthError(AuthInvalidToken, "Unable to parse authentication token.", err)
		default:
			return nil, newAuthError(AuthInvalidToken, "Unable to verify authentication token.", err)
		}
	}

	if parsed == nil || !parsed.Valid {
		return nil, newAuthError(AuthInvalidToken, "Unable to verify authentication token.", nil)
	}

	if !a.audienceAccepted(claims.Audience) {
		return nil, newAuthError(AuthInvalidToken, "Incorrect claims. Please, check the audience and issuer.", nil)
	}

	if claims.Permissions == nil {
		return nil, newAuthError(AuthInvalidToken, "Permissions not included in JWT.", nil)
	}

	return claims, nil
}

func (a *Authorizer) audienceAccepted(audience jwt.ClaimStrings) bool {
	if len(a.audiences) == 0 {
		return true
	}
	for _, got := range audience {
		for _, want := range a.audiences {
			if got == want {
				return true
			}
		}
	}
	return false
}

// EffectivePermissions unions the permissions claim with the grants of every recognised role claim.
func EffectivePermissions(claims *security.AccessTokenClaims) []domain.Permission {
	if claims == nil {
		return nil
	}

	seen := make(map[domain.Permission]struct{})
	result := make([]domain.Permission, 0, len(claims.Permissions))
	add := func(p domain.Permission) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}

	for _, raw := range claims.Permissions {
		if raw = strings.TrimSpace(raw); raw != "" {
			add(domain.Permission(raw))
		}
	}
	for _, name := range claims.Roles {
		role, ok := domain.ParseRole(name)
		if !ok {
			continue
		}
		granted, _ := domain.PermissionsFor(role)
		for _, p := range granted {
			add(p)
		}
	}

	return result
}

// HasPermission reports whether the verified claims grant the permission.
func HasPermission(claims *security.AccessTokenClaims, required domain.Permission) bool {
	for _, granted := range EffectivePermissions(claims) {
		if granted == required {
			return true
		}
	}
	return false
}
