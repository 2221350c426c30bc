package shared

import (
	"context"
	"io"
)

// ObjectStorage stores uploaded files under slash-separated keys such as
// "categories/<id>.png"
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns a download URL for the object
	URL(ctx context.Context, key string) (string, error)
	// List returns the keys under prefix in lexical order
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// FileUpload is a file received from a form
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
