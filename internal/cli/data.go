package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/store"
)

// NewAskCmd creates the 'ask' command, a one-shot chat turn.
func NewAskCmd(opts *Options) *cobra.Command {
	var soil advisory.SoilReading

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the chatbot a question",
		Example: `  advisorctl ask "should I water my field?"
  advisorctl ask --db data/advisory.db --district Amritsar --lang pa "ਮੰਡੀ ਭਾਅ"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := a.Advisor.StartSession(ctx, opts.District, advisory.ParseLanguage(opts.Language))
			if err != nil {
				return err
			}
			if soilFlagsChanged(cmd) {
				if _, err := a.Chat.SetSoil(ctx, session.ID, &soil); err != nil {
					return err
				}
			}

			reply, err := a.Advisor.Ask(ctx, session.ID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), reply)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			return nil
		},
	}

	addSoilFlags(cmd, &soil)
	return cmd
}

func soilFlagsChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"nitrogen", "phosphorus", "potassium", "ph"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// NewDashboardCmd creates the 'dashboard' command.
func NewDashboardCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the district overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.Advisor.Dashboard(ctx, opts.District, advisory.ParseLanguage(opts.Language), nil)
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), d)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", d.Labels.Title, d.District)
			fmt.Fprintf(out, "%s: %s\n", d.Labels.Weather, d.WeatherText)
			fmt.Fprintf(out, "%s: %s\n", d.Labels.Recommended, d.RecommendedCrop)
			fmt.Fprintln(out, d.PriceText)
			fmt.Fprintln(out, d.Irrigation)
			fmt.Fprintln(out, d.Nutrients)
			return nil
		},
	}
}

// NewMigrateCmd creates the 'migrate' command.
func NewMigrateCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := store.Open(ctx, opts.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			applied, err := st.Migrate(ctx)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			return nil
		},
	}
}
