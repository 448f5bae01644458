package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/janhq/mistralhub/internal/chatclient/upload"
	"github.com/janhq/mistralhub/internal/domain/conversation"
)

func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// renderMarkdown renders content for the terminal and returns it unchanged
// when the renderer is unavailable.
func renderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// display prints Markdown rendered on a terminal and raw when piped.
func display(w io.Writer, content string, tty bool) {
	if tty {
		fmt.Fprint(w, renderMarkdown(content))
		return
	}
	fmt.Fprintln(w, content)
}

// streamPrinter writes only the unseen tail of a growing message.
type streamPrinter struct {
	w       io.Writer
	printed string
}

func (p *streamPrinter) Update(msg conversation.Message) {
	if !strings.HasPrefix(msg.Content, p.printed) {
		// The content was replaced rather than extended.
		fmt.Fprint(p.w, "\n")
		p.printed = ""
	}
	fmt.Fprint(p.w, msg.Content[len(p.printed):])
	p.printed = msg.Content
}

// describeAttachment names an attachment, with its size while the upload
// behind its handle is still live in uploads.
func describeAttachment(a conversation.Attachment, uploads *upload.Registry) string {
	desc := fmt.Sprintf("%s `%s`", a.Type, a.Name)
	if uploads == nil {
		return desc
	}
	if f, ok := uploads.Lookup(a.URL); ok {
		desc += fmt.Sprintf(" (%s, %s)", f.MimeType, upload.FormatFileSize(f.Size))
	}
	return desc
}

// transcript formats a conversation as a Markdown document.
func transcript(c conversation.Conversation, uploads *upload.Registry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Title)
	fmt.Fprintf(&b, "_%s, model `%s`_\n\n", c.ID, c.Model)
	for _, m := range c.Messages {
		if m.Role == conversation.RoleUser {
			b.WriteString("## You\n\n")
		} else {
			b.WriteString("## Assistant\n\n")
		}
		for _, a := range m.Attachments {
			fmt.Fprintf(&b, "> attached %s\n\n", describeAttachment(a, uploads))
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}
