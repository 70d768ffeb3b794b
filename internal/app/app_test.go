package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/imast-web/internal/pages"
	"finitefield.org/imast-web/internal/platform/config"
)

func TestLoadServesFixturesWithoutContentAPI(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pages"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pages", "about.yaml"), []byte(`
type: page
title: About
status: published
layout:
  - order: 1
    module:
      type: hero
      content:
        title: About us
`), 0o644))

	site, err := Load(context.Background(), nil,
		config.WithEnvMap(map[string]string{
			"SITE_CONTENT_DIR": dir,
			"SITE_BASE_URL":    "https://imast.example.com",
		}),
		config.WithoutSystemEnv(),
		config.WithEnvFile(""),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = site.Close() })

	require.False(t, site.Client.Remote())
	require.True(t, site.Registry.Frozen())

	res, ok := site.Composer.ComposeByName(context.Background(), "page", "about")
	require.True(t, ok)
	require.Equal(t, pages.OutcomeOK, res.Outcome)
	require.Equal(t, "https://imast.example.com/about", res.Meta.Canonical)
	require.Len(t, res.Blocks, 1)
}

func TestLoadResolvesTokenFromFallbackFile(t *testing.T) {
	secretsFile := filepath.Join(t.TempDir(), "secrets.local")
	require.NoError(t, os.WriteFile(secretsFile, []byte("cms-token=fallback-token\n"), 0o600))

	site, err := Load(context.Background(), nil,
		config.WithEnvMap(map[string]string{
			"SITE_CMS_API_TOKEN":         "secret://cms-token",
			"SITE_SECRETS_FALLBACK_FILE": secretsFile,
		}),
		config.WithoutSystemEnv(),
		config.WithEnvFile(""),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = site.Close() })
	require.Equal(t, "fallback-token", site.Config.CMS.APIToken)
}

func TestLoadReportsInvalidFields(t *testing.T) {
	_, err := Load(context.Background(), nil,
		config.WithEnvMap(map[string]string{"SITE_BASE_URL": "not-a-url"}),
		config.WithoutSystemEnv(),
		config.WithEnvFile(""),
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Site.BaseURL")
}
