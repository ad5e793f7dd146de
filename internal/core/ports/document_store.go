package ports

import (
	"context"
	"io"
)

// DocumentUpload describes one uploaded file handed to the store.
type DocumentUpload struct {
	// Field is the form field the file arrived on (profilePhoto, idDocument,
	// licenseDocument); stores may use it to build the object name.
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// DocumentStore is the external object-storage collaborator for uploaded
// identity, license, and profile documents. Save returns a stable reference
// persisted on the agent record; Remove releases a previously saved object.
type DocumentStore interface {
	Save(ctx context.Context, upload DocumentUpload) (ref string, err error)
	Remove(ctx context.Context, ref string) error
}
