// Command devtoken mints role tokens and signing keys for local development.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/infra/config"
	"github.com/arklim/casting-agency/internal/infra/security"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type mintOptions struct {
	keyDir   string
	subject  string
	issuer   string
	audience []string
	ttl      time.Duration
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "devtoken",
		Short:        "Development helpers for casting agency bearer tokens",
		SilenceUsage: true,
	}
	root.AddCommand(newMintCmd(), newKeygenCmd())
	return root
}

func newMintCmd() *cobra.Command {
	var opts mintOptions

	cmd := &cobra.Command{
		Use:   "mint [role...]",
		Short: "Print a signed token per role (all roles when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			roles, err := resolveRoles(args)
			if err != nil {
				return err
			}

			provider, err := security.NewDevKeyProvider(opts.keyDir)
			if err != nil {
				return fmt.Errorf("load keys from %s: %w", opts.keyDir, err)
			}

			return mint(cmd.OutOrStdout(), security.NewJWTManager(provider), roles, opts, time.Now().UTC())
		},
	}

	defaults := defaultAuthSettings()
	flags := cmd.Flags()
	flags.StringVar(&opts.keyDir, "key-dir", defaults.KeyDirectory, "directory holding PEM signing keys")
	flags.StringVar(&opts.subject, "subject", "", "token subject (defaults to dev|<role>)")
	flags.StringVar(&opts.issuer, "issuer", defaults.Issuer, "iss claim")
	flags.StringSliceVar(&opts.audience, "audience", defaults.Audience, "aud claim")
	flags.DurationVar(&opts.ttl, "ttl", defaults.DevTokenTTL, "token lifetime")

	return cmd
}

func newKeygenCmd() *cobra.Command {
	var (
		keyDir string
		kid    string
		bits   int
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Write a new RSA signing key to the key directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := writeSigningKey(keyDir, kid, bits)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&keyDir, "key-dir", defaultAuthSettings().KeyDirectory, "directory to write the PEM key to")
	flags.StringVar(&kid, "kid", "dev", "key id, used as the file name")
	flags.IntVar(&bits, "bits", 2048, "RSA key size")

	return cmd
}

func defaultAuthSettings() config.AuthSettings {
	cfg, err := config.Load()
	if err != nil {
		return config.AuthSettings{KeyDirectory: "./secrets", Audience: []string{"casting"}, DevTokenTTL: 8 * time.Hour}
	}
	return cfg.Auth
}

func resolveRoles(args []string) ([]domain.Role, error) {
	if len(args) == 0 {
		return domain.Roles(), nil
	}

	roles := make([]domain.Role, 0, len(args))
	for _, arg := range args {
		role, ok := domain.ParseRole(arg)
		if !ok {
			return nil, fmt.Errorf("unknown role %q", arg)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// mint writes one ROLE_TOKEN=<jwt> line per role.
func mint(w io.Writer, manager *security.JWTManager, roles []domain.Role, opts mintOptions, now time.Time) error {
	for _, role := range roles {
		permissions, _ := domain.PermissionsFor(role)
		grants := make([]string, 0, len(permissions))
		for _, p := range permissions {
			grants = append(grants, p.String())
		}

		subject := opts.subject
		if subject == "" {
			subject = "dev|" + role.String()
		}

		claims, err := security.NewAccessTokenClaims(security.AccessTokenOptions{
			Subject:     subject,
			Permissions: grants,
			Roles:       []string{role.String()},
			Issuer:      opts.issuer,
			Audience:    opts.audience,
			TTL:         opts.ttl,
			IssuedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("claims for %s: %w", role, err)
		}

		token, err := manager.SignAccessToken(claims)
		if err != nil {
			return fmt.Errorf("sign %s token: %w", role, err)
		}

		if _, err := fmt.Fprintf(w, "%s_TOKEN=%s\n", strings.ToUpper(role.String()), token); err != nil {
			return err
		}
	}
	return nil
}

func writeSigningKey(dir, kid string, bits int) (string, error) {
	kid = strings.TrimSpace(kid)
	if kid == "" || strings.ContainsAny(kid, `/\`) {
		return "", fmt.Errorf("invalid key id %q", kid)
	}
	if bits < 2048 {
		return "", fmt.Errorf("key size %d too small", bits)
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create key dir: %w", err)
	}

	path := filepath.Join(dir, kid+".pem")
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return "", fmt.Errorf("write key: %w", err)
	}
	return path, nil
}
