package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/janhq/mistralhub/internal/domain/model"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models the relay offers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *clientApp) error {
			models, err := app.api.Models(ctx)
			if err != nil {
				app.log.Warn().Err(err).Msg("relay unreachable, showing the built-in catalog")
				models = model.All()
			}

			selected := app.session.Model()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tNAME\tVISION\tDOCUMENTS")
			for _, m := range models {
				marker := ""
				if m.ID == selected {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", marker, m.ID, m.Name, m.SupportsVision, m.SupportsDocuments)
			}
			return tw.Flush()
		})
	},
}
