package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile             = ".env"
	defaultPort                = "8080"
	defaultReadTimeout         = 15 * time.Second
	defaultWriteTimeout        = 15 * time.Second
	defaultIdleTimeout         = 60 * time.Second
	defaultTemplatesDir        = "templates"
	defaultPublicDir           = "public"
	defaultContentDir          = "content"
	defaultCMSTimeout          = 5 * time.Second
	defaultBlogPageSize        = 10
	defaultSiteName            = "iMast"
	defaultBaseURL             = "http://localhost:8080"
	defaultTitle               = "iMast | Digital Solutions for Growing Businesses"
	defaultDescription         = "iMast builds websites, software and marketing programs that help businesses grow."
	defaultImage               = "/assets/img/og-default.png"
	defaultLogo                = "/assets/img/logo.png"
	defaultLang                = "en"
	defaultAdminAddr           = ":8081"
	defaultAdminBasePath       = "/admin"
	defaultEnvironment         = "local"
	defaultLogLevel            = "info"
	defaultSecretsFallbackFile = ".secrets.local"
)

// Config captures runtime configuration for the site binaries, grouped by concern.
type Config struct {
	Server        ServerConfig
	Site          SiteConfig
	CMS           CMSConfig
	Analytics     AnalyticsConfig
	Admin         AdminConfig
	Observability ObservabilityConfig
	Secrets       SecretsConfig
}

// ServerConfig configures the public HTTP server.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TemplatesDir string
	PublicDir    string
	DevMode      bool
}

// Addr returns the listen address for Port.
func (s ServerConfig) Addr() string {
	if strings.HasPrefix(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

// SiteConfig holds the site-wide values injected into metadata and schema builders.
type SiteConfig struct {
	Name               string
	BaseURL            string
	DefaultTitle       string
	DefaultDescription string
	DefaultImage       string
	LogoURL            string
	TwitterHandle      string
	Lang               string
}

// CMSConfig configures the content API client.
type CMSConfig struct {
	BaseURL      string
	APIToken     string
	Timeout      time.Duration
	ContentDir   string
	BlogPageSize int
}

// AnalyticsConfig holds client instrumentation ids surfaced to templates.
type AnalyticsConfig struct {
	GA4MeasurementID string
	GTMContainerID   string
	Debug            bool
}

// AdminConfig configures the admin dashboard server.
type AdminConfig struct {
	Address     string
	BasePath    string
	Environment string
}

// ObservabilityConfig controls logging and trace correlation.
type ObservabilityConfig struct {
	LogLevel  string
	ProjectID string
}

// SecretsConfig configures secret:// resolution.
type SecretsConfig struct {
	ProjectID    string
	FallbackFile string
}

// SecretResolver resolves secret:// references.
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret calls f.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError lists configuration fields that are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the offending field names.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes a failure resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
	newSecret    func(context.Context, SecretsConfig) (SecretResolver, error)
}

// WithEnvFile overrides the .env file path.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap injects explicit values that take precedence over the OS environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv stops Load from reading os.LookupEnv.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// WithSecretResolver sets the resolver used for secret:// values.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) { o.secret = resolver }
}

// WithSecretResolverFactory builds the resolver from the loaded secrets section. The
// factory runs only when a value actually references a secret and no explicit resolver is set.
func WithSecretResolverFactory(factory func(context.Context, SecretsConfig) (SecretResolver, error)) Option {
	return func(o *loaderOptions) { o.newSecret = factory }
}

// Load assembles configuration from defaults, the .env file, the environment and explicit
// overrides (lowest to highest precedence), then resolves secret references and validates.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := options.envMap[key]; ok {
			return v, true
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := dotEnv[key]
		return v, ok
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "SITE_PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			ReadTimeout:  durationWithDefault(lookup, "SITE_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SITE_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SITE_IDLE_TIMEOUT", defaultIdleTimeout),
			TemplatesDir: stringWithDefault(lookup, "SITE_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:    stringWithDefault(lookup, "SITE_PUBLIC_DIR", defaultPublicDir),
			DevMode:      boolWithDefault(lookup, "SITE_DEV", false),
		},
		Site: SiteConfig{
			Name:               stringWithDefault(lookup, "SITE_NAME", defaultSiteName),
			BaseURL:            strings.TrimRight(stringWithDefault(lookup, "SITE_BASE_URL", defaultBaseURL), "/"),
			DefaultTitle:       stringWithDefault(lookup, "SITE_DEFAULT_TITLE", defaultTitle),
			DefaultDescription: stringWithDefault(lookup, "SITE_DEFAULT_DESCRIPTION", defaultDescription),
			DefaultImage:       stringWithDefault(lookup, "SITE_DEFAULT_IMAGE", defaultImage),
			LogoURL:            stringWithDefault(lookup, "SITE_LOGO_URL", defaultLogo),
			TwitterHandle:      stringWithDefault(lookup, "SITE_TWITTER_HANDLE", ""),
			Lang:               strings.ToLower(stringWithDefault(lookup, "SITE_LANG", defaultLang)),
		},
		CMS: CMSConfig{
			BaseURL:      strings.TrimRight(stringWithDefault(lookup, "SITE_CMS_BASE_URL", ""), "/"),
			APIToken:     stringWithDefault(lookup, "SITE_CMS_API_TOKEN", ""),
			Timeout:      durationWithDefault(lookup, "SITE_CMS_TIMEOUT", defaultCMSTimeout),
			ContentDir:   stringWithDefault(lookup, "SITE_CONTENT_DIR", defaultContentDir),
			BlogPageSize: intWithDefault(lookup, "SITE_BLOG_PAGE_SIZE", defaultBlogPageSize),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: stringWithDefault(lookup, "SITE_GA_MEASUREMENT_ID", ""),
			GTMContainerID:   stringWithDefault(lookup, "SITE_GTM_CONTAINER_ID", ""),
			Debug:            boolWithDefault(lookup, "SITE_ANALYTICS_DEBUG", false),
		},
		Admin: AdminConfig{
			Address:     stringWithDefault(lookup, "SITE_ADMIN_ADDR", defaultAdminAddr),
			BasePath:    stringWithDefault(lookup, "SITE_ADMIN_BASE_PATH", defaultAdminBasePath),
			Environment: strings.ToLower(stringWithDefault(lookup, "SITE_ENVIRONMENT", defaultEnvironment)),
		},
		Observability: ObservabilityConfig{
			LogLevel:  strings.ToLower(stringWithDefault(lookup, "SITE_LOG_LEVEL", defaultLogLevel)),
			ProjectID: stringWithDefault(lookup, "SITE_GCP_PROJECT_ID", ""),
		},
		Secrets: SecretsConfig{
			ProjectID:    stringWithDefault(lookup, "SITE_SECRETS_PROJECT_ID", stringWithDefault(lookup, "SITE_GCP_PROJECT_ID", "")),
			FallbackFile: stringWithDefault(lookup, "SITE_SECRETS_FALLBACK_FILE", defaultSecretsFallbackFile),
		},
	}

	resolver := options.secret
	if resolver == nil && options.newSecret != nil && IsSecretReference(cfg.CMS.APIToken) {
		resolver, err = options.newSecret(ctx, cfg.Secrets)
		if err != nil {
			return Config{}, fmt.Errorf("config: secret resolver: %w", err)
		}
	}
	token, err := resolveSecret(ctx, cfg.CMS.APIToken, resolver)
	if err != nil {
		return Config{}, err
	}
	cfg.CMS.APIToken = token

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsSecretReference reports whether value points at a secret store entry.
func IsSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if value == "" || !IsSecretReference(value) {
		return value, nil
	}
	ref := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, ref)
	if err != nil {
		return "", &SecretError{Ref: ref, Err: err}
	}
	return strings.TrimSpace(secret), nil
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "sm://") {
		return "secret://" + strings.TrimPrefix(trimmed, "sm://")
	}
	return trimmed
}

func validateConfig(cfg Config) error {
	var invalid []string
	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "Server.Port")
	}
	if !isAbsoluteURL(cfg.Site.BaseURL) {
		invalid = append(invalid, "Site.BaseURL")
	}
	if strings.TrimSpace(cfg.Site.Name) == "" {
		invalid = append(invalid, "Site.Name")
	}
	if cfg.CMS.BaseURL != "" && !isAbsoluteURL(cfg.CMS.BaseURL) {
		invalid = append(invalid, "CMS.BaseURL")
	}
	if cfg.CMS.Timeout <= 0 {
		invalid = append(invalid, "CMS.Timeout")
	}
	if cfg.CMS.BlogPageSize <= 0 || cfg.CMS.BlogPageSize > 100 {
		invalid = append(invalid, "CMS.BlogPageSize")
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 || cfg.Server.IdleTimeout <= 0 {
		invalid = append(invalid, "Server.Timeouts")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}
