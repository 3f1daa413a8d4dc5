package security

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	ErrSigningKeyUnavailable = errors.New("signing key not available for this key provider")
	ErrKeyNotFound           = errors.New("key not found")
)

// KeyProvider defines the interface for providing cryptographic keys.
type KeyProvider interface {
	GetSigningKey() (*rsa.PrivateKey, error)
	GetVerificationKey(kid string) (*rsa.PublicKey, error)
	SigningKeyID() string
}

// DevKeyProvider reads PEM encoded RSA keys from a directory. The file name without
// extension becomes the kid; the first private key in name order signs tokens.
type DevKeyProvider struct {
	keys       map[string]*rsa.PublicKey
	signingKey *rsa.PrivateKey
	signingKID string
}

// NewDevKeyProvider creates a new DevKeyProvider.
func NewDevKeyProvider(keyDir string) (*DevKeyProvider, error) {
	files, err := os.ReadDir(keyDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read key directory: %w", err)
	}

	provider := &DevKeyProvider{
		keys: make(map[string]*rsa.PublicKey),
	}

	for _, file := range files {
		if file.IsDir() || strings.HasPrefix(file.Name(), ".") {
			continue
		}

		path := filepath.Join(keyDir, file.Name())
		keyData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
		}

		kid := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
		private, public, err := parsePEMKey(keyData)
		if err != nil {
			return nil, fmt.Errorf("failed to parse key from file %s: %w", path, err)
		}

		if private != nil && provider.signingKey == nil {
			provider.signingKey = private
			provider.signingKID = kid
		}
		provider.keys[kid] = public
	}

	if len(provider.keys) == 0 {
		return nil, fmt.Errorf("no keys found in %s", keyDir)
	}

	return provider, nil
}

func parsePEMKey(data []byte) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, nil, errors.New("failed to decode PEM block")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, &key.PublicKey, nil
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		if rsaKey, ok := key.(*rsa.PrivateKey); ok {
			return rsaKey, &rsaKey.PublicKey, nil
		}
	}

	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return nil, key, nil
	}

	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		if rsaKey, ok := key.(*rsa.PublicKey); ok {
			return nil, rsaKey, nil
		}
	}

	return nil, nil, errors.New("unsupported key encoding")
}

// GetSigningKey returns the private key for signing tokens.
func (p *DevKeyProvider) GetSigningKey() (*rsa.PrivateKey, error) {
	if p.signingKey == nil {
		return nil, ErrSigningKeyUnavailable
	}
	return p.signingKey, nil
}

// SigningKeyID returns the kid of the signing key.
func (p *DevKeyProvider) SigningKeyID() string {
	return p.signingKID
}

// GetVerificationKey returns the public key for verifying tokens.
func (p *DevKeyProvider) GetVerificationKey(kid string) (*rsa.PublicKey, error) {
	key, ok := p.keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}
	return key, nil
}

// ListVerificationKeys returns a copy of every loaded public key.
func (p *DevKeyProvider) ListVerificationKeys() map[string]*rsa.PublicKey {
	out := make(map[string]*rsa.PublicKey, len(p.keys))
	for kid, key := range p.keys {
		out[kid] = key
	}
	return out
}

// StaticKeyProvider serves a single in-memory key pair.
type StaticKeyProvider struct {
	kid     string
	private *rsa.PrivateKey
}

// NewStaticKeyProvider wraps an RSA key pair under the given kid.
func NewStaticKeyProvider(kid string, private *rsa.PrivateKey) *StaticKeyProvider {
	return &StaticKeyProvider{kid: kid, private: private}
}

func (p *StaticKeyProvider) GetSigningKey() (*rsa.PrivateKey, error) {
	if p.private == nil {
		return nil, ErrSigningKeyUnavailable
	}
	return p.private, nil
}

func (p *StaticKeyProvider) SigningKeyID() string {
	return p.kid
}

func (p *StaticKeyProvider) GetVerificationKey(kid string) (*rsa.PublicKey, error) {
	if p.private == nil || kid != p.kid {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}
	return &p.private.PublicKey, nil
}

const (
	defaultJWKSRefresh = 10 * time.Minute
	minJWKSRefetch     = 30 * time.Second
	jwksFetchTimeout   = 5 * time.Second
	maxJWKSBodyBytes   = 1 << 20
)

// JWKSKeyProvider resolves verification keys from a remote JWKS document,
// refetching it when the cache is stale or an unknown kid shows up.
// Refetches are at most one per minJWKSRefetch and concurrent callers share a single fetch.
type JWKSKeyProvider struct {
	url     string
	refresh time.Duration
	client  *http.Client
	now     func() time.Time
	fetches singleflight.Group

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	fetchedAt   time.Time
	attemptedAt time.Time
}

// NewJWKSKeyProvider constructs a provider for the given JWKS URL.
func NewJWKSKeyProvider(url string, refresh time.Duration, client *http.Client) (*JWKSKeyProvider, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("jwks url is required")
	}
	if refresh <= 0 {
		refresh = defaultJWKSRefresh
	}
	if client == nil {
		client = &http.Client{Timeout: jwksFetchTimeout}
	}

	return &JWKSKeyProvider{
		url:     url,
		refresh: refresh,
		client:  client,
		now:     time.Now,
		keys:    make(map[string]*rsa.PublicKey),
	}, nil
}

func (p *JWKSKeyProvider) GetSigningKey() (*rsa.PrivateKey, error) {
	return nil, ErrSigningKeyUnavailable
}

func (p *JWKSKeyProvider) SigningKeyID() string {
	return ""
}

// GetVerificationKey returns the cached key for kid, refreshing the key set first when needed.
func (p *JWKSKeyProvider) GetVerificationKey(kid string) (*rsa.PublicKey, error) {
	p.mu.RLock()
	key, ok := p.keys[kid]
	stale := p.now().Sub(p.fetchedAt) > p.refresh
	p.mu.RUnlock()

	if ok && !stale {
		return key, nil
	}

	if p.attemptedRecently() {
		if ok {
			return key, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}

	_, err, _ := p.fetches.Do("jwks", func() (interface{}, error) {
		if p.attemptedRecently() {
			return nil, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), jwksFetchTimeout)
		defer cancel()
		return nil, p.Refresh(ctx)
	})
	if err != nil {
		if ok {
			return key, nil
		}
		return nil, err
	}

	p.mu.RLock()
	key, ok = p.keys[kid]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}
	return key, nil
}

func (p *JWKSKeyProvider) attemptedRecently() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.attemptedAt.IsZero() && p.now().Sub(p.attemptedAt) < minJWKSRefetch
}

// Refresh downloads the key set and replaces the cache. Failed attempts also
// count towards the refetch interval.
func (p *JWKSKeyProvider) Refresh(ctx context.Context) error {
	defer func() {
		p.mu.Lock()
		p.attemptedAt = p.now()
		p.mu.Unlock()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("jwks: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("jwks: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks: unexpected status %d", resp.StatusCode)
	}

	var set jsonWebKeySet
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBodyBytes)).Decode(&set); err != nil {
		return fmt.Errorf("jwks: decode: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kid == "" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		key, err := parseJWK(jwk)
		if err != nil {
			continue
		}
		keys[jwk.Kid] = key
	}

	p.mu.Lock()
	p.keys = keys
	p.fetchedAt = p.now()
	p.mu.Unlock()
	return nil
}

// KeyIDs returns the kids currently cached, sorted.
func (p *JWKSKeyProvider) KeyIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	kids := make([]string, 0, len(p.keys))
	for kid := range p.keys {
		kids = append(kids, kid)
	}
	sort.Strings(kids)
	return kids
}

// NewKeyProvider picks a provider: a JWKS URL wins, otherwise the PEM key directory is used.
func NewKeyProvider(jwksURL, keyDir string, refresh time.Duration) (KeyProvider, error) {
	switch {
	case strings.TrimSpace(jwksURL) != "":
		return NewJWKSKeyProvider(jwksURL, refresh, nil)
	case strings.TrimSpace(keyDir) != "":
		return NewDevKeyProvider(keyDir)
	default:
		return nil, errors.New("either auth.jwks_url or auth.key_directory must be configured")
	}
}
