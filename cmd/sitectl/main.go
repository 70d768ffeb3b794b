// Command sitectl inspects the site the way the web server composes it: registered block
// types, JSON-LD graphs and rendered block markup.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"finitefield.org/imast-web/internal/app"
	"finitefield.org/imast-web/internal/platform/config"
	"finitefield.org/imast-web/internal/platform/observability"
)

func main() {
	cmd := newRootCmd(loadSite)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSite builds the site from the dotenv file; logs go to stderr at warn level.
func loadSite(ctx context.Context, envFile string) (*app.Site, error) {
	logger, err := observability.NewStderrLogger("warn")
	if err != nil {
		logger = zap.NewNop()
	}
	return app.Load(ctx, logger.Named("sitectl"), config.WithEnvFile(envFile))
}
