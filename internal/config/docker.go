package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DockerSecretsPath is where container runtimes mount secrets
const DockerSecretsPath = "/run/secrets"

// Secret file names read from DockerSecretsPath
const (
	StorefrontTokenSecretName = "storefront_api_token" // #nosec G101 - file name, not a credential
	CMSTokenSecretName        = "contentstack_delivery_token"
	SessionSecretName         = "session_secret"
	KSMConfigSecretName       = "ksm_config"
	DatabaseURLSecretName     = "database_url"
)

// ApplyDockerSecrets overrides credentials with mounted secret files found in
// dir and returns the names of the secrets that were applied.
func ApplyDockerSecrets(cfg *Config, dir string) []string {
	targets := []struct {
		name string
		dst  *string
	}{
		{StorefrontTokenSecretName, &cfg.Commerce.PublicToken},
		{CMSTokenSecretName, &cfg.CMS.DeliveryToken},
		{SessionSecretName, &cfg.Session.Secret},
		{KSMConfigSecretName, &cfg.Secrets.KSMConfig},
		{DatabaseURLSecretName, &cfg.Database.DSN},
	}

	var applied []string
	for _, target := range targets {
		data, err := os.ReadFile(filepath.Join(dir, target.name)) // #nosec G304 - Docker secret path
		if err != nil {
			continue
		}
		value := strings.TrimSpace(string(data))
		if value == "" {
			continue
		}
		*target.dst = value
		applied = append(applied, target.name)
	}
	return applied
}

// IsRunningInDocker checks if the application is running inside a Docker container
func IsRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	if cgroup, err := os.ReadFile("/proc/1/cgroup"); err == nil { // #nosec G304 - well-known proc path
		if strings.Contains(string(cgroup), "docker") {
			return true
		}
	}

	if _, err := os.Stat(DockerSecretsPath); err == nil {
		return true
	}

	return false
}
