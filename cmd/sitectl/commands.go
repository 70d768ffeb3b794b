package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"finitefield.org/imast-web/internal/app"
	"finitefield.org/imast-web/internal/pages"
)

// siteLoader builds the site for one command invocation.
type siteLoader func(ctx context.Context, envFile string) (*app.Site, error)

// errDiagnostics is returned by render --strict when any block failed to render.
var errDiagnostics = errors.New("page contains diagnostic blocks")

func newRootCmd(load siteLoader) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "sitectl",
		Short:         "Inspect composed pages, structured data and module registrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with SITE_* settings")

	withSite := func(cmd *cobra.Command, fn func(*app.Site) error) error {
		site, err := load(cmd.Context(), envFile)
		if err != nil {
			return err
		}
		defer site.Close()
		return fn(site)
	}

	root.AddCommand(
		newModulesCmd(withSite),
		newSchemaCmd(withSite),
		newRenderCmd(withSite),
	)
	return root
}

type siteRunner func(cmd *cobra.Command, fn func(*app.Site) error) error

func newModulesCmd(withSite siteRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List registered block types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSite(cmd, func(site *app.Site) error {
				for _, name := range site.Registry.Names() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func newSchemaCmd(withSite siteRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <section> [slug]",
		Short: "Print the JSON-LD graph of a composed page",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSite(cmd, func(site *app.Site) error {
				res, err := compose(cmd.Context(), site.Composer, args)
				if err != nil {
					return err
				}
				if res.Schema == nil {
					return fmt.Errorf("sitectl: %s has no structured data (status is not published)", res.Path)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Schema)
			})
		},
	}
}

func newRenderCmd(withSite siteRunner) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "render <section> [slug]",
		Short: "Print the rendered block markup of a page",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSite(cmd, func(site *app.Site) error {
				res, err := compose(cmd.Context(), site.Composer, args)
				if err != nil {
					return err
				}
				if res.Outcome == pages.OutcomeEmpty {
					fmt.Fprintln(cmd.ErrOrStderr(), pages.EmptyMessage)
					return nil
				}
				diagnostics := 0
				for _, block := range res.Blocks {
					if block.Diagnostic {
						diagnostics++
						fmt.Fprintf(cmd.ErrOrStderr(), "block %s (%s): %s\n", block.Key, block.Type, block.Reason)
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(block.HTML))
				}
				if strict && diagnostics > 0 {
					return fmt.Errorf("sitectl: %s: %w (%d)", res.Path, errDiagnostics, diagnostics)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any block renders as a diagnostic")
	return cmd
}

// compose resolves args into a page and turns not-found or failed outcomes into errors.
func compose(ctx context.Context, composer *pages.Composer, args []string) (pages.Result, error) {
	slug := ""
	if len(args) > 1 {
		slug = args[1]
	}
	res, ok := composer.ComposeByName(ctx, args[0], slug)
	if !ok {
		return pages.Result{}, fmt.Errorf("sitectl: unknown section %q", args[0])
	}
	switch res.Outcome {
	case pages.OutcomeNotFound:
		return res, fmt.Errorf("sitectl: %s: not found", res.Path)
	case pages.OutcomeFailed:
		return res, fmt.Errorf("sitectl: %s: %w", res.Path, res.Err)
	}
	return res, nil
}
