// Package secrets resolves keeper:// credential references through Keeper
// Secrets Manager so tokens never have to live in config files.
package secrets

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sm "github.com/keeper-security/secrets-manager-go/core"

	"github.com/composable-commerce/storefront/internal/config"
)

// Scheme prefixes setting values that must be looked up in KSM
const Scheme = "keeper://"

// ErrNoConfig is returned when a keeper:// value is found but no KSM config is set
var ErrNoConfig = errors.New("keeper:// reference found but secrets.ksm_config is empty")

// NotationGetter is the part of the KSM client the resolver needs
type NotationGetter interface {
	GetNotation(notation string) ([]interface{}, error)
}

// Resolver looks up keeper:// references
type Resolver struct {
	ksm NotationGetter
}

// IsReference reports whether value is a keeper:// reference
func IsReference(value string) bool {
	return strings.HasPrefix(value, Scheme)
}

// NewResolver creates a resolver from a KSM config given as base64 or raw JSON
func NewResolver(ksmConfig string) (*Resolver, error) {
	cfg, err := decodeKSMConfig(ksmConfig)
	if err != nil {
		return nil, err
	}

	client := sm.NewSecretsManager(&sm.ClientOptions{
		Config: sm.NewMemoryKeyValueStorage(cfg),
	})
	if client == nil {
		return nil, errors.New("failed to create secrets manager client")
	}
	return NewResolverWithClient(client), nil
}

// NewResolverWithClient wraps an existing notation getter
func NewResolverWithClient(client NotationGetter) *Resolver {
	return &Resolver{ksm: client}
}

// Resolve returns value unchanged unless it is a keeper:// reference, in
// which case the referenced field value is fetched.
func (r *Resolver) Resolve(value string) (string, error) {
	if !IsReference(value) {
		return value, nil
	}

	n, err := ParseNotation(strings.TrimPrefix(value, Scheme))
	if err != nil {
		return "", fmt.Errorf("invalid secret reference: %w", err)
	}

	results, err := r.ksm.GetNotation(n.String())
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", n.String(), err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("failed to resolve %s: field not found", n.String())
	}

	switch v := results[0].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// ResolveConfig replaces every keeper:// credential in cfg in place and
// returns the names of the settings that were resolved. A nil resolver is
// created from cfg.Secrets.KSMConfig on first use.
func ResolveConfig(cfg *config.Config, r *Resolver) ([]string, error) {
	targets := []struct {
		name string
		dst  *string
	}{
		{"commerce.public_token", &cfg.Commerce.PublicToken},
		{"cms.api_key", &cfg.CMS.APIKey},
		{"cms.delivery_token", &cfg.CMS.DeliveryToken},
		{"session.secret", &cfg.Session.Secret},
		{"database.dsn", &cfg.Database.DSN},
	}

	var resolved []string
	for _, target := range targets {
		if !IsReference(*target.dst) {
			continue
		}
		if r == nil {
			if cfg.Secrets.KSMConfig == "" {
				return resolved, ErrNoConfig
			}
			var err error
			if r, err = NewResolver(cfg.Secrets.KSMConfig); err != nil {
				return resolved, err
			}
		}

		value, err := r.Resolve(*target.dst)
		if err != nil {
			return resolved, fmt.Errorf("%s: %w", target.name, err)
		}
		*target.dst = value
		resolved = append(resolved, target.name)
	}
	return resolved, nil
}

// decodeKSMConfig accepts the base64 blob KSM hands out or its JSON form
func decodeKSMConfig(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNoConfig
	}

	data := []byte(raw)
	if !strings.HasPrefix(raw, "{") {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode KSM config: %w", err)
		}
		data = decoded
	}

	var cfg map[string]string
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse KSM config: %w", err)
	}
	for _, field := range []string{"clientId", "privateKey", "appKey"} {
		if cfg[field] == "" {
			return nil, fmt.Errorf("KSM config missing required field: %s", field)
		}
	}
	return cfg, nil
}
