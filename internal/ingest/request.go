package ingest

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"shotbox/internal/media/sniffer"
)

const (
	FieldFile     = "file"
	FieldCategory = "category"
	FieldTags     = "tags"

	multipartFormData = "multipart/form-data"
)

// Upload is one parsed ingestion request. Category and Tags are nil when
// the field was absent from the form.
type Upload struct {
	File     io.Reader
	FileName string
	MimeType string
	Category *string
	Tags     *string

	closer io.Closer
}

func (u Upload) Close() error {
	if u.closer == nil {
		return nil
	}
	return u.closer.Close()
}

// ParseRequest validates the content type and extracts the form parts.
// Parts larger than maxMemory are spooled to disk by mime/multipart.
func ParseRequest(r *http.Request, maxMemory int64) (Upload, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), multipartFormData) {
		bad := &BadRequestError{Message: "Content type must be multipart/form-data"}
		if _, ok := r.Header["Content-Type"]; ok {
			bad.ContentType = &contentType
		}
		return Upload{}, bad
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return Upload{}, &BadRequestError{Message: "Invalid multipart form data"}
	}

	file, header, err := r.FormFile(FieldFile)
	if err != nil {
		return Upload{}, &BadRequestError{Message: "No file found in request"}
	}

	return Upload{
		File:     file,
		FileName: header.Filename,
		MimeType: partMimeType(header),
		Category: formValue(r.MultipartForm, FieldCategory),
		Tags:     formValue(r.MultipartForm, FieldTags),
		closer:   file,
	}, nil
}

func partMimeType(header *multipart.FileHeader) string {
	return strings.TrimSpace(header.Header.Get("Content-Type"))
}

func formValue(form *multipart.Form, field string) *string {
	if form == nil {
		return nil
	}
	values, ok := form.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	value := values[0]
	return &value
}

// sniffMismatch reports the detected type when it disagrees with the declared one.
func sniffMismatch(declared string, data []byte) (string, bool) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return "", false
	}
	if sniffer.Essence(declared) == result.MIME {
		return "", false
	}
	return result.MIME, true
}
