// Package stream implements the Server-Sent-Events framing shared by the relay
// and its clients: every frame is "data: <payload>\n\n", content and error
// payloads are JSON objects and the terminal sentinel is the bare [DONE].
package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

const (
	DataPrefix   = "data: "
	DoneSentinel = "[DONE]"
	frameEnd     = "\n\n"
)

// ErrMalformedFrame is returned by ParseLine for data lines that are not valid frames.
var ErrMalformedFrame = errors.New("malformed stream frame")

// Kind distinguishes decoded events.
type Kind int

const (
	// KindIgnore marks lines that carry no frame (blank lines, comments, other fields).
	KindIgnore Kind = iota
	KindContent
	KindError
	KindDone
)

// Event is one decoded frame.
type Event struct {
	Kind    Kind
	Content string
	Error   string
}

type contentPayload struct {
	Content string `json:"content"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type framePayload struct {
	Content *string `json:"content"`
	Error   *string `json:"error"`
}

// EncodeContent renders a content frame.
func EncodeContent(text string) ([]byte, error) {
	return encode(contentPayload{Content: text})
}

// EncodeError renders an error frame.
func EncodeError(message string) ([]byte, error) {
	return encode(errorPayload{Error: message})
}

// EncodeDone renders the terminal sentinel frame.
func EncodeDone() []byte {
	return []byte(DataPrefix + DoneSentinel + frameEnd)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(DataPrefix)
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder terminates with a single newline; the frame needs a blank line.
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ParseLine decodes one line of the stream with its line terminator removed.
func ParseLine(line string) (Event, error) {
	line = strings.TrimRight(line, "\r")
	data, ok := strings.CutPrefix(line, DataPrefix)
	if !ok {
		return Event{Kind: KindIgnore}, nil
	}
	if data == DoneSentinel {
		return Event{Kind: KindDone}, nil
	}

	var payload framePayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return Event{}, ErrMalformedFrame
	}
	switch {
	case payload.Error != nil:
		return Event{Kind: KindError, Error: *payload.Error}, nil
	case payload.Content != nil:
		return Event{Kind: KindContent, Content: *payload.Content}, nil
	default:
		return Event{Kind: KindIgnore}, nil
	}
}

type flusher interface {
	Flush()
}

// Writer emits frames to an underlying writer, flushing after every frame when possible.
type Writer struct {
	w io.Writer
	f flusher
}

// NewWriter wraps w; gin.ResponseWriter and http.Flusher implementations are flushed per frame.
func NewWriter(w io.Writer) *Writer {
	f, _ := w.(flusher)
	return &Writer{w: w, f: f}
}

// WriteContent emits one content frame.
func (w *Writer) WriteContent(text string) error {
	frame, err := EncodeContent(text)
	if err != nil {
		return err
	}
	return w.write(frame)
}

// WriteError emits one error frame.
func (w *Writer) WriteError(message string) error {
	frame, err := EncodeError(message)
	if err != nil {
		return err
	}
	return w.write(frame)
}

// WriteDone emits the sentinel frame.
func (w *Writer) WriteDone() error {
	return w.write(EncodeDone())
}

func (w *Writer) write(frame []byte) error {
	if _, err := w.w.Write(frame); err != nil {
		return err
	}
	if w.f != nil {
		w.f.Flush()
	}
	return nil
}
