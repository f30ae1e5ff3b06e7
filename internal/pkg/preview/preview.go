package preview

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ThumbnailWidth is the width editor previews are scaled down to
const ThumbnailWidth = 500

// MaxPreviewBytes bounds a decoded preview image
const MaxPreviewBytes = 10 << 20

// Kind is how a stored document can be previewed
type Kind int

const (
	Unsupported Kind = iota
	PDF
	Office
)

func (k Kind) String() string {
	switch k {
	case PDF:
		return "pdf"
	case Office:
		return "office"
	default:
		return "unsupported"
	}
}

var officeExt = map[string]bool{
	".doc": true, ".docx": true,
	".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
}

// Classify decides the preview kind from the stored MIME type, falling back
// to the file name extension.
func Classify(mimeType, fileName string) Kind {
	mimeType = strings.ToLower(mimeType)
	ext := strings.ToLower(filepath.Ext(fileName))
	switch {
	case mimeType == "application/pdf" || ext == ".pdf":
		return PDF
	case strings.HasPrefix(mimeType, "application/msword"),
		strings.HasPrefix(mimeType, "application/vnd.ms-"),
		strings.HasPrefix(mimeType, "application/vnd.openxmlformats-officedocument."),
		officeExt[ext]:
		return Office
	}
	return Unsupported
}

// IsDataURL reports whether s looks like a base64 image data URL
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:image/") && strings.Contains(s, ";base64,")
}

// DecodeDataURL returns the payload of a base64 image data URL.
func DecodeDataURL(s string) ([]byte, error) {
	if !IsDataURL(s) {
		return nil, errors.New("not an image data URL")
	}
	payload := s[strings.Index(s, ";base64,")+len(";base64,"):]
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxPreviewBytes {
		return nil, fmt.Errorf("preview image exceeds %d bytes", MaxPreviewBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode preview: %w", err)
	}
	return data, nil
}

// Thumbnail decodes an image and re-encodes it as a PNG no wider than
// ThumbnailWidth. Smaller images keep their size.
func Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode preview image: %w", err)
	}
	if img.Bounds().Dx() > ThumbnailWidth {
		img = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
