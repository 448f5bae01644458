package chatclient

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/janhq/mistralhub/internal/domain/stream"
)

// MaxConsecutiveParseFailures bounds how many malformed frames in a row are
// tolerated before the stream is considered corrupt.
const MaxConsecutiveParseFailures = 32

// ErrCorruptStream is returned when too many consecutive frames fail to parse.
var ErrCorruptStream = errors.New("relay stream is corrupt")

// StreamError is an in-band error frame sent by the relay after streaming began.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}

// Consume reads relay frames from r, calling onFragment for every content
// fragment in arrival order. It returns the accumulated text. The [DONE]
// sentinel and a clean EOF both end the stream normally.
func Consume(ctx context.Context, r io.Reader, onFragment func(fragment, text string)) (string, error) {
	reader := bufio.NewReader(r)
	var text strings.Builder
	failures := 0

	for {
		if err := ctx.Err(); err != nil {
			return text.String(), err
		}

		// ReadString splits on the newline byte, so multi-byte runes are
		// never cut between reads.
		line, readErr := reader.ReadString('\n')
		if line != "" {
			event, err := stream.ParseLine(strings.TrimSuffix(line, "\n"))
			switch {
			case err != nil:
				failures++
				if failures > MaxConsecutiveParseFailures {
					return text.String(), ErrCorruptStream
				}
			case event.Kind == stream.KindDone:
				return text.String(), nil
			case event.Kind == stream.KindError:
				return text.String(), &StreamError{Message: event.Error}
			case event.Kind == stream.KindContent:
				failures = 0
				if event.Content == "" {
					break
				}
				text.WriteString(event.Content)
				if onFragment != nil {
					onFragment(event.Content, text.String())
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return text.String(), nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return text.String(), ctxErr
			}
			return text.String(), readErr
		}
	}
}
