package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janhq/mistralhub/internal/chatclient/upload"
	"github.com/janhq/mistralhub/internal/domain/conversation"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a message, or start an interactive session",
	Long: `Send one message to the current conversation and stream the reply.
Without a message argument, chat reads messages from stdin line by line.

Interactive commands:
  /new            start a new conversation
  /model <id>     switch model
  /attach <path>  attach an image or PDF to the next message
  /exit           quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringSliceP("attach", "a", nil, "Attach an image or PDF file")
	chatCmd.Flags().Bool("new", false, "Start a new conversation first")
	chatCmd.Flags().Bool("render", false, "Render the finished reply as Markdown")
}

func runChat(cmd *cobra.Command, args []string) error {
	paths, _ := cmd.Flags().GetStringSlice("attach")
	startNew, _ := cmd.Flags().GetBool("new")
	render, _ := cmd.Flags().GetBool("render")

	return withApp(cmd, func(ctx context.Context, app *clientApp) error {
		if startNew {
			app.session.NewConversation(ctx)
		}

		if len(args) > 0 {
			attachments, err := encodeAttachments(ctx, app, paths)
			if err != nil {
				return err
			}
			return sendMessage(ctx, app, cmd.OutOrStdout(), strings.Join(args, " "), attachments, render)
		}
		return interactive(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout(), paths, render)
	})
}

func encodeAttachments(ctx context.Context, app *clientApp, paths []string) ([]conversation.Attachment, error) {
	attachments := make([]conversation.Attachment, 0, len(paths))
	for _, path := range paths {
		f, err := upload.Encode(ctx, path)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, upload.Attachment(f, app.uploads))
	}
	return attachments, nil
}

func sendMessage(ctx context.Context, app *clientApp, w io.Writer, content string, attachments []conversation.Attachment, render bool) error {
	for _, a := range attachments {
		fmt.Fprintf(w, "attached %s\n", describeAttachment(a, app.uploads))
	}
	printer := &streamPrinter{w: w}
	final, err := app.session.Send(ctx, content, attachments, printer.Update)
	fmt.Fprintln(w)
	if render && err == nil {
		display(w, final.Content, isStdoutTTY())
	}
	return err
}

// interactive reads one message per line until EOF or /exit.
func interactive(ctx context.Context, app *clientApp, in io.Reader, w io.Writer, paths []string, render bool) error {
	pending := paths
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	fmt.Fprintf(w, "model %s, /exit to quit\n", app.session.Model())
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/exit" || line == "/quit":
			return nil
		case line == "/new":
			c := app.session.NewConversation(ctx)
			fmt.Fprintf(w, "started %s\n", c.ID)
			continue
		case strings.HasPrefix(line, "/model "):
			if err := app.session.ChangeModel(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/model "))); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			continue
		case strings.HasPrefix(line, "/attach "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/attach "))
			if _, err := os.Stat(path); err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			pending = append(pending, path)
			fmt.Fprintf(w, "queued %s\n", path)
			continue
		}

		attachments, err := encodeAttachments(ctx, app, pending)
		pending = nil
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		// A failed reply is already recorded in the conversation as an error line.
		_ = sendMessage(ctx, app, w, line, attachments, render)
	}
}
