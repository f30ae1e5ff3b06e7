package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ManuelReschke/TemplateForge/internal/pkg/apperror"
)

// SniffLen is the number of leading bytes http.DetectContentType looks at
const SniffLen = 512

// document extensions mapped to the MIME type we store and serve
var allowedExt = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// what the sniffer reports for each family: OOXML files are zip archives,
// legacy office files are OLE2 containers the sniffer does not know
var sniffedAs = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/octet-stream"},
	".xls":  {"application/octet-stream"},
	".ppt":  {"application/octet-stream"},
	".docx": {"application/zip", "application/octet-stream"},
	".xlsx": {"application/zip", "application/octet-stream"},
	".pptx": {"application/zip", "application/octet-stream"},
}

// MimeForExt returns the canonical MIME type of an allowed extension
func MimeForExt(ext string) (string, bool) {
	m, ok := allowedExt[strings.ToLower(ext)]
	return m, ok
}

// IsAllowedExt reports whether files with this extension may be uploaded
func IsAllowedExt(filename string) bool {
	_, ok := allowedExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ValidateDocumentBySniff checks the provided filename (extension) and the
// first bytes (head) against the document whitelist. Returns the MIME type to
// store or an error.
func ValidateDocumentBySniff(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mime, ok := allowedExt[ext]
	if !ok {
		return "", errors.New("Only PDF, Word, Excel and PowerPoint files are supported")
	}
	if len(head) == 0 {
		return "", errors.New("File is empty")
	}

	detected := http.DetectContentType(head)

	// Block obvious scriptable types regardless of extension
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", errors.New("Invalid file type: HTML content is not allowed")
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return "", errors.New("XML content is not allowed")
	}

	for _, want := range sniffedAs[ext] {
		if detected == want {
			return mime, nil
		}
	}
	return "", fmt.Errorf("File content (%s) does not match extension %s", detected, ext)
}

// File is a validated upload ready to be handed to a blob store
type File struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
	closer      io.Closer
}

// Close releases the underlying multipart file
func (f *File) Close() error {
	if f == nil || f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// FromFileHeader opens a multipart file, enforces maxBytes (0 disables the
// limit) and validates its type. The returned reader replays the sniffed
// head, so it yields the full file. Callers must Close the File.
func FromFileHeader(fh *multipart.FileHeader, maxBytes int64) (*File, error) {
	if fh == nil {
		return nil, apperror.Invalid("No file uploaded", nil)
	}
	if fh.Size <= 0 {
		return nil, apperror.Invalid("File is empty", nil)
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, apperror.Invalid(fmt.Sprintf("File exceeds the maximum size of %d bytes", maxBytes), nil)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperror.Invalid("Could not read uploaded file", err)
	}

	head := make([]byte, SniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		src.Close()
		return nil, apperror.Invalid("Could not read uploaded file", err)
	}
	head = head[:n]

	mime, err := ValidateDocumentBySniff(fh.Filename, head)
	if err != nil {
		src.Close()
		return nil, apperror.Invalid(err.Error(), nil)
	}

	return &File{
		Reader:      io.MultiReader(bytes.NewReader(head), src),
		Size:        fh.Size,
		FileName:    filepath.Base(fh.Filename),
		ContentType: mime,
		closer:      src,
	}, nil
}
