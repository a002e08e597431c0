// Package cli implements the advisorctl commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/app"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/config"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/logging"
)

// Options are the flags shared by every command.
type Options struct {
	DBPath   string
	Language string
	District string
	JSON     bool
}

// NewRootCmd assembles advisorctl.
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:   "advisorctl",
		Short: "Query the Punjab crop advisory engine from the terminal",
		Long: `advisorctl runs the crop advisory rule engine and chatbot locally.

Engine commands (recommend, irrigation, nutrients, classify) need no database.
Data commands (ask, dashboard, migrate) open the SQLite store given by --db.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.DBPath, "db", ":memory:", "SQLite database path")
	root.PersistentFlags().StringVarP(&opts.Language, "lang", "l", "en", "Reply language code")
	root.PersistentFlags().StringVarP(&opts.District, "district", "d", "Ludhiana", "Punjab district")
	root.PersistentFlags().BoolVarP(&opts.JSON, "json", "j", false, "Output as JSON")

	root.AddCommand(
		NewRecommendCmd(opts),
		NewIrrigationCmd(opts),
		NewNutrientsCmd(opts),
		NewClassifyCmd(opts),
		NewLanguagesCmd(opts),
		NewAskCmd(opts),
		NewDashboardCmd(opts),
		NewMigrateCmd(opts),
	)
	return root
}

// openApp loads the environment configuration with the flag overrides applied.
func openApp(ctx context.Context, opts *Options) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Store.Path = opts.DBPath
	cfg.Advisory.DefaultDistrict = opts.District
	return app.New(ctx, cfg, logging.Discard())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
