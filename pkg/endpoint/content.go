package endpoint

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
)

// ErrStreamingContent is returned when binary content is asked to encode
// itself as JSON.
var ErrStreamingContent = errors.New("streaming content cannot be encoded as JSON")

// Resource is a raw request or response body.
type Resource struct {
	data        []byte
	contentType string
}

// NewResource wraps data with its media type.
func NewResource(data []byte, contentType string) *Resource {
	return &Resource{data: data, contentType: contentType}
}

// ContentLength returns the body size in bytes.
func (r *Resource) ContentLength() int64 {
	return int64(len(r.data))
}

// Bytes returns the body.
func (r *Resource) Bytes() []byte {
	return r.data
}

// ContentType returns the media type, or application/octet-stream when
// none was given.
func (r *Resource) ContentType() string {
	if r.contentType == "" {
		return "application/octet-stream"
	}
	return r.contentType
}

// MarshalJSON refuses to encode the body.
func (r *Resource) MarshalJSON() ([]byte, error) {
	return nil, ErrStreamingContent
}

func (r *Resource) String() string {
	return fmt.Sprintf("%s (%d B)", r.ContentType(), r.ContentLength())
}

// Upload is a file received in a multipart form.
type Upload struct {
	header *multipart.FileHeader
}

// Filename returns the client-supplied file name.
func (u *Upload) Filename() string {
	return u.header.Filename
}

// ContentType returns the part's Content-Type header.
func (u *Upload) ContentType() string {
	return u.header.Header.Get("Content-Type")
}

// Size returns the file size in bytes.
func (u *Upload) Size() int64 {
	return u.header.Size
}

// Open opens the uploaded file.
func (u *Upload) Open() (multipart.File, error) {
	return u.header.Open()
}

// ReadAll returns the uploaded file's content.
func (u *Upload) ReadAll() ([]byte, error) {
	f, err := u.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// MarshalJSON refuses to encode the file.
func (u *Upload) MarshalJSON() ([]byte, error) {
	return nil, ErrStreamingContent
}

func (u *Upload) String() string {
	return fmt.Sprintf("%s (%d B)", u.Filename(), u.Size())
}
