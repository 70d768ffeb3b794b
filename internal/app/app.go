// Package app wires configuration, the content client and the page composer shared by
// the web server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"finitefield.org/imast-web/internal/cms"
	"finitefield.org/imast-web/internal/modules"
	"finitefield.org/imast-web/internal/pages"
	"finitefield.org/imast-web/internal/platform/config"
	"finitefield.org/imast-web/internal/platform/secrets"
	"finitefield.org/imast-web/internal/seo"
)

const instrumentation = "finitefield.org/imast-web"

// Site bundles the long-lived collaborators behind every rendered page.
type Site struct {
	Config   config.Config
	Client   *cms.Client
	Registry *modules.Registry
	Renderer *modules.Renderer
	Composer *pages.Composer

	secrets *secrets.Resolver
}

// Load reads configuration, resolving secret references through Secret Manager, and builds the Site.
func Load(ctx context.Context, logger *zap.Logger, opts ...config.Option) (*Site, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var resolver *secrets.Resolver
	factory := func(ctx context.Context, sc config.SecretsConfig) (config.SecretResolver, error) {
		resolver = secrets.New(ctx,
			secrets.WithProject(sc.ProjectID),
			secrets.WithFallbackFile(sc.FallbackFile),
			secrets.WithLogger(logger.Named("secrets")),
			secrets.WithMeter(otel.Meter(instrumentation)),
		)
		return resolver, nil
	}
	opts = append([]config.Option{config.WithSecretResolverFactory(factory)}, opts...)

	cfg, err := config.Load(ctx, opts...)
	if err != nil {
		if resolver != nil {
			_ = resolver.Close()
		}
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			return nil, fmt.Errorf("app: invalid configuration %v: %w", verr.Fields(), err)
		}
		return nil, fmt.Errorf("app: load configuration: %w", err)
	}

	site, err := New(cfg, logger)
	if err != nil {
		if resolver != nil {
			_ = resolver.Close()
		}
		return nil, err
	}
	site.secrets = resolver
	return site, nil
}

// New builds a Site from an already loaded configuration.
func New(cfg config.Config, logger *zap.Logger) (*Site, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := cms.NewClient(cfg.CMS.BaseURL,
		cms.WithToken(cfg.CMS.APIToken),
		cms.WithTimeout(cfg.CMS.Timeout),
		cms.WithContentDir(cfg.CMS.ContentDir),
	)
	if client.Remote() {
		logger.Info("content api configured", zap.String("base_url", cfg.CMS.BaseURL))
	} else {
		logger.Info("content api not configured; serving local fixtures", zap.String("dir", cfg.CMS.ContentDir))
	}

	registry, err := modules.NewDefaultRegistry(modules.Deps{})
	if err != nil {
		return nil, fmt.Errorf("app: module registry: %w", err)
	}
	renderer := modules.NewRenderer(registry,
		modules.WithLogger(logger.Named("modules")),
		modules.WithMeter(otel.Meter(instrumentation)),
	)
	composer := pages.New(client, renderer, SEOSite(cfg.Site), pages.WithLogger(logger.Named("pages")))

	return &Site{
		Config:   cfg,
		Client:   client,
		Registry: registry,
		Renderer: renderer,
		Composer: composer,
	}, nil
}

// Close releases the secret resolver, if one was created.
func (s *Site) Close() error {
	if s == nil || s.secrets == nil {
		return nil
	}
	return s.secrets.Close()
}

// SEOSite maps the site configuration onto the metadata builder input.
func SEOSite(cfg config.SiteConfig) seo.Site {
	return seo.Site{
		Name:               cfg.Name,
		BaseURL:            cfg.BaseURL,
		DefaultTitle:       cfg.DefaultTitle,
		DefaultDescription: cfg.DefaultDescription,
		DefaultImage:       cfg.DefaultImage,
		LogoURL:            cfg.LogoURL,
		TwitterHandle:      cfg.TwitterHandle,
		Lang:               cfg.Lang,
	}
}
