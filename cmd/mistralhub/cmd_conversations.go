package main

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/janhq/mistralhub/internal/domain/conversation"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new conversation and make it current",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *clientApp) error {
			c := app.session.NewConversation(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", c.ID, c.Model)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored conversations, most recent first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *clientApp) error {
			currentID := ""
			if current, ok := app.session.Current(); ok {
				currentID = current.ID
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tTITLE\tMODEL\tMESSAGES\tUPDATED")
			for _, c := range mostRecentFirst(app.session.Conversations(ctx)) {
				marker := ""
				if c.ID == currentID {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", marker, c.ID, c.Title, c.Model, len(c.Messages),
					time.UnixMilli(c.UpdatedAt).Format(time.DateTime))
			}
			return tw.Flush()
		})
	},
}

// mostRecentFirst returns a copy of conversations ordered by UpdatedAt, newest first.
func mostRecentFirst(conversations []conversation.Conversation) []conversation.Conversation {
	sorted := slices.Clone(conversations)
	slices.SortStableFunc(sorted, func(a, b conversation.Conversation) int {
		return cmp.Compare(b.UpdatedAt, a.UpdatedAt)
	})
	return sorted
}

var showCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "Print a conversation, the current one by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *clientApp) error {
			if len(args) == 0 {
				current, ok := app.session.Current()
				if !ok {
					return fmt.Errorf("no current conversation")
				}
				display(cmd.OutOrStdout(), transcript(current, app.uploads), isStdoutTTY())
				return nil
			}
			for _, c := range app.session.Conversations(ctx) {
				if c.ID == args[0] {
					display(cmd.OutOrStdout(), transcript(c, app.uploads), isStdoutTTY())
					return nil
				}
			}
			return fmt.Errorf("conversation %s not found", args[0])
		})
	},
}

var useCmd = &cobra.Command{
	Use:   "use <conversation-id>",
	Short: "Make a conversation current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *clientApp) error {
			c, err := app.session.Select(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", c.ID, c.Title, c.Model)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <conversation-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a conversation",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *clientApp) error {
			app.session.Delete(ctx, args[0])
			return nil
		})
	},
}
