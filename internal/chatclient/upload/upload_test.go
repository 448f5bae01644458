package upload

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/mistralhub/internal/domain/conversation"
	"github.com/janhq/mistralhub/internal/utils/platformerrors"
)

var (
	pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	pdfHeader = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
)

func TestClassify(t *testing.T) {
	cases := map[string]conversation.AttachmentType{
		"image/jpeg":      conversation.AttachmentImage,
		"image/png":       conversation.AttachmentImage,
		"image/gif":       conversation.AttachmentImage,
		"image/webp":      conversation.AttachmentImage,
		"application/pdf": conversation.AttachmentDocument,
	}
	for mimeType, want := range cases {
		got, ok := Classify(mimeType)
		assert.True(t, ok, mimeType)
		assert.Equal(t, want, got, mimeType)
	}

	_, ok := Classify("text/plain")
	assert.False(t, ok)
	assert.True(t, IsDocument("image/png"))
	assert.False(t, IsImage("application/pdf"))
}

func TestEncodeBytes(t *testing.T) {
	ctx := context.Background()

	f, err := EncodeBytes(ctx, "scan.pdf", pdfHeader)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.MimeType)
	assert.Equal(t, conversation.AttachmentDocument, f.Type)
	assert.Equal(t, int64(len(pdfHeader)), f.Size)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pdfHeader), f.Base64)
	assert.False(t, strings.HasPrefix(f.Base64, "data:"))

	f, err = EncodeBytes(ctx, "cat.png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.MimeType)
	assert.Equal(t, conversation.AttachmentImage, f.Type)
}

func TestEncodeBytesRejects(t *testing.T) {
	ctx := context.Background()

	_, err := EncodeBytes(ctx, "empty.bin", nil)
	assert.True(t, platformerrors.IsValidationError(err))

	_, err = EncodeBytes(ctx, "notes.txt", []byte("plain text notes\n"))
	require.Error(t, err)
	assert.Contains(t, platformerrors.Message(err), "unsupported file type text/plain")
}

func TestEncodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, pdfHeader, 0o600))

	f, err := Encode(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "scan.pdf", f.Name)

	_, err = Encode(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.True(t, platformerrors.IsValidationError(err))
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	f := File{Name: "cat.png", MimeType: "image/png", Type: conversation.AttachmentImage, Base64: "aGk="}

	att := Attachment(f, r)
	assert.True(t, strings.HasPrefix(att.URL, "blob:"))
	assert.Equal(t, "aGk=", att.Base64)
	assert.NotEmpty(t, att.ID)

	got, ok := r.Lookup(att.URL)
	require.True(t, ok)
	assert.Equal(t, f, got)

	other := r.Acquire(f)
	assert.NotEqual(t, att.URL, other)
	assert.Equal(t, 2, r.Len())

	r.Release(att.URL)
	r.Release("https://example.com/not-a-handle")
	_, ok = r.Lookup(att.URL)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())

	require.NoError(t, r.Close())
	assert.Equal(t, 0, r.Len())
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatFileSize(0))
	assert.Equal(t, "1023 B", FormatFileSize(1023))
	assert.Equal(t, "1.0 KB", FormatFileSize(1024))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "1.0 MB", FormatFileSize(1024*1024))
	assert.Equal(t, "2.5 MB", FormatFileSize(5*1024*1024/2))
}
