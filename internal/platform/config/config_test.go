package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Addr() != ":8080" {
		t.Errorf("unexpected addr %s", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Site.BaseURL != defaultBaseURL {
		t.Errorf("expected default base url, got %s", cfg.Site.BaseURL)
	}
	if cfg.Site.DefaultImage != defaultImage {
		t.Errorf("expected default image, got %s", cfg.Site.DefaultImage)
	}
	if cfg.CMS.BaseURL != "" {
		t.Errorf("expected empty cms base url, got %s", cfg.CMS.BaseURL)
	}
	if cfg.CMS.ContentDir != "content" {
		t.Errorf("expected content dir default, got %s", cfg.CMS.ContentDir)
	}
	if cfg.CMS.BlogPageSize != 10 {
		t.Errorf("expected blog page size 10, got %d", cfg.CMS.BlogPageSize)
	}
	if cfg.Admin.BasePath != "/admin" {
		t.Errorf("expected admin base path /admin, got %s", cfg.Admin.BasePath)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected info log level, got %s", cfg.Observability.LogLevel)
	}
}

func TestLoadWithOverridesAndSecrets(t *testing.T) {
	env := map[string]string{
		"SITE_PORT":           "9090",
		"SITE_READ_TIMEOUT":   "20s",
		"SITE_BASE_URL":       "https://imast.example.com/",
		"SITE_CMS_BASE_URL":   "https://cms.example.com/api/",
		"SITE_CMS_API_TOKEN":  "sm://cms/token",
		"SITE_CMS_TIMEOUT":    "2s",
		"SITE_BLOG_PAGE_SIZE": "25",
		"SITE_DEV":            "yes",
		"SITE_LANG":           "JA",
		"SITE_ENVIRONMENT":    "Staging",
		"SITE_GCP_PROJECT_ID": "imast-prod",
	}
	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if ref == "secret://cms/token" {
			return " cms-token \n", nil
		}
		return "", errors.New("unknown ref")
	})

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr() != ":9090" {
		t.Errorf("unexpected addr %s", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected read timeout %s", cfg.Server.ReadTimeout)
	}
	if !cfg.Server.DevMode {
		t.Error("expected dev mode enabled")
	}
	if cfg.Site.BaseURL != "https://imast.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Site.BaseURL)
	}
	if cfg.CMS.BaseURL != "https://cms.example.com/api" {
		t.Errorf("unexpected cms base url %s", cfg.CMS.BaseURL)
	}
	if cfg.CMS.APIToken != "cms-token" {
		t.Errorf("expected resolved token, got %q", cfg.CMS.APIToken)
	}
	if cfg.CMS.Timeout != 2*time.Second {
		t.Errorf("unexpected cms timeout %s", cfg.CMS.Timeout)
	}
	if cfg.CMS.BlogPageSize != 25 {
		t.Errorf("unexpected page size %d", cfg.CMS.BlogPageSize)
	}
	if cfg.Site.Lang != "ja" {
		t.Errorf("expected lowercased lang, got %s", cfg.Site.Lang)
	}
	if cfg.Admin.Environment != "staging" {
		t.Errorf("expected lowercased environment, got %s", cfg.Admin.Environment)
	}
	if cfg.Secrets.ProjectID != "imast-prod" {
		t.Errorf("expected secrets project to default to gcp project, got %s", cfg.Secrets.ProjectID)
	}
}

func TestLoadSecretResolverFactoryRunsOnlyForReferences(t *testing.T) {
	var calls int
	var got SecretsConfig
	factory := func(_ context.Context, sc SecretsConfig) (SecretResolver, error) {
		calls++
		got = sc
		return SecretResolverFunc(func(context.Context, string) (string, error) { return "from-factory", nil }), nil
	}

	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{"SITE_CMS_API_TOKEN": "plain"}), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolverFactory(factory))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if calls != 0 || cfg.CMS.APIToken != "plain" {
		t.Fatalf("factory should not run for plain values: calls=%d token=%q", calls, cfg.CMS.APIToken)
	}

	env := map[string]string{
		"SITE_CMS_API_TOKEN":         "secret://cms-token",
		"SITE_SECRETS_PROJECT_ID":    "imast-secrets",
		"SITE_SECRETS_FALLBACK_FILE": "/tmp/secrets.env",
	}
	cfg, err = Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolverFactory(factory))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if calls != 1 || cfg.CMS.APIToken != "from-factory" {
		t.Fatalf("expected factory resolution: calls=%d token=%q", calls, cfg.CMS.APIToken)
	}
	if got.ProjectID != "imast-secrets" || got.FallbackFile != "/tmp/secrets.env" {
		t.Fatalf("unexpected secrets config %+v", got)
	}
}

func TestLoadSecretWithoutResolver(t *testing.T) {
	env := map[string]string{"SITE_CMS_API_TOKEN": "secret://cms/token"}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var secretErr *SecretError
	if !errors.As(err, &secretErr) {
		t.Fatalf("expected SecretError, got %v", err)
	}
	if secretErr.Ref != "secret://cms/token" {
		t.Errorf("unexpected ref %s", secretErr.Ref)
	}
	if !errors.Is(err, errSecretResolverNotConfigured) {
		t.Errorf("expected unwrap to resolver error, got %v", secretErr.Err)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"SITE_BASE_URL":       "imast.example.com",
		"SITE_CMS_BASE_URL":   "ftp://cms",
		"SITE_BLOG_PAGE_SIZE": "0",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := validationErr.Fields()
	want := []string{"Site.BaseURL", "CMS.BaseURL", "CMS.BlogPageSize"}
	if len(fields) != len(want) {
		t.Fatalf("expected fields %v, got %v", want, fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d: expected %s, got %s", i, want[i], fields[i])
		}
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	contents := "# local overrides\nexport SITE_NAME=\"From File\"\nSITE_PORT=7000\nSITE_LOG_LEVEL=debug\n"
	if err := os.WriteFile(envPath, []byte(contents), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("SITE_PORT", "7100")
	t.Setenv("SITE_LOG_LEVEL", "warn")

	cfg, err := Load(context.Background(), WithEnvFile(envPath), WithEnvMap(map[string]string{"SITE_LOG_LEVEL": "error"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Site.Name != "From File" {
		t.Errorf("expected .env value, got %s", cfg.Site.Name)
	}
	if cfg.Server.Port != "7100" {
		t.Errorf("expected OS env to beat .env, got %s", cfg.Server.Port)
	}
	if cfg.Observability.LogLevel != "error" {
		t.Errorf("expected explicit map to win, got %s", cfg.Observability.LogLevel)
	}
}

func TestLoadMissingEnvFileIgnored(t *testing.T) {
	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	if err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}
