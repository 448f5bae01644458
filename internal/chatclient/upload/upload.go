package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/gabriel-vasile/mimetype"

	"github.com/janhq/mistralhub/internal/domain/conversation"
	"github.com/janhq/mistralhub/internal/utils/idgen"
	"github.com/janhq/mistralhub/internal/utils/platformerrors"
)

// MaxFileBytes caps a single attachment.
const MaxFileBytes = 20 * 1024 * 1024

var (
	SupportedImageTypes    = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	SupportedDocumentTypes = []string{"application/pdf", "image/jpeg", "image/png"}
)

// File is an encoded upload ready to attach to a message.
type File struct {
	Name     string
	MimeType string
	Type     conversation.AttachmentType
	Size     int64
	// Base64 is the std encoding of the content without a data URL prefix.
	Base64 string
}

// IsImage reports whether mimeType can be sent to the vision endpoint.
func IsImage(mimeType string) bool {
	return slices.Contains(SupportedImageTypes, mimeType)
}

// IsDocument reports whether mimeType can be sent to the document endpoint.
func IsDocument(mimeType string) bool {
	return slices.Contains(SupportedDocumentTypes, mimeType)
}

// Classify maps a MIME type to an attachment type. Images win over
// documents for types both accept.
func Classify(mimeType string) (conversation.AttachmentType, bool) {
	switch {
	case IsImage(mimeType):
		return conversation.AttachmentImage, true
	case IsDocument(mimeType):
		return conversation.AttachmentDocument, true
	default:
		return "", false
	}
}

// Encode reads and encodes the file at path.
func Encode(ctx context.Context, path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("cannot read %s", path), err, "4c2b7a19-63e8-4d0e-b8f1-2a9d5c7e3b64")
	}
	if info.Size() > MaxFileBytes {
		return File{}, tooLarge(ctx, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("cannot read %s", path), err, "9e0d3f6a-2c18-47b5-a4e9-6f1c8b2d7a05")
	}
	return EncodeBytes(ctx, filepath.Base(path), data)
}

// EncodeBytes detects the content type of data and base64 encodes it.
func EncodeBytes(ctx context.Context, name string, data []byte) (File, error) {
	if len(data) == 0 {
		return File{}, platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeValidation,
			"file is empty", nil, "1f7e4a2c-9b3d-4e86-a5c0-d2b8e6f4a913")
	}
	if len(data) > MaxFileBytes {
		return File{}, tooLarge(ctx, int64(len(data)))
	}

	mimeType := mimetype.Detect(data).String()
	kind, ok := Classify(mimeType)
	if !ok {
		return File{}, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unsupported file type %s", mimeType), nil, "6a3e9c1d-5f27-4b08-9d4a-c7e2f0b5a318",
			map[string]any{"name": name})
	}

	return File{
		Name:     name,
		MimeType: mimeType,
		Type:     kind,
		Size:     int64(len(data)),
		Base64:   base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Attachment turns f into a message attachment whose URL is a handle
// acquired from r. The caller releases the handle when the attachment is
// discarded.
func Attachment(f File, r *Registry) conversation.Attachment {
	return conversation.Attachment{
		ID:       idgen.New(),
		Type:     f.Type,
		Name:     f.Name,
		URL:      r.Acquire(f),
		MimeType: f.MimeType,
		Base64:   f.Base64,
	}
}

// FormatFileSize renders a byte count as B, KB or MB.
func FormatFileSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

func tooLarge(ctx context.Context, size int64) error {
	return platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeValidation,
		fmt.Sprintf("file is %s, the limit is %s", FormatFileSize(size), FormatFileSize(MaxFileBytes)), nil,
		"b8d1f4e7-0a6c-4392-8e5b-3c9a7d2f1e06")
}
