// Package storage provides the disk-backed document store for uploaded
// identity, license, and profile files. References returned to callers are
// paths relative to the store root, so the root can move without invalidating
// agent records.
package storage

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/housify/agent-platform/internal/core/domain"
	"github.com/housify/agent-platform/internal/core/ports"
)

const maxDocumentSize = 5 << 20 // 5 MB

// allowedTypes mirrors the intake policy: identity documents are images or PDFs.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// DiskStore implements ports.DocumentStore on the local filesystem.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns the store.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// Save writes the upload under a collision-free name derived from the form
// field, a timestamp, and a random suffix. Uploads over the size cap or with
// a disallowed content type are rejected as validation errors.
func (s *DiskStore) Save(ctx context.Context, upload ports.DocumentUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext, ok := allowedTypes[normalizeContentType(upload.ContentType)]
	if !ok {
		return "", &domain.ValidationError{Fields: []string{
			fmt.Sprintf("%s: only images and PDF files are allowed", upload.Field),
		}}
	}
	if upload.Size > maxDocumentSize {
		return "", &domain.ValidationError{Fields: []string{
			fmt.Sprintf("%s: file size cannot exceed 5MB", upload.Field),
		}}
	}

	name := uniqueName(upload.Field, ext)
	path := filepath.Join(s.root, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	defer f.Close()

	// LimitReader guards against a lying Size field.
	n, err := io.Copy(f, io.LimitReader(upload.Content, maxDocumentSize+1))
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write document: %w", err)
	}
	if n > maxDocumentSize {
		_ = os.Remove(path)
		return "", &domain.ValidationError{Fields: []string{
			fmt.Sprintf("%s: file size cannot exceed 5MB", upload.Field),
		}}
	}

	return name, nil
}

// Remove deletes a stored document. A reference that no longer exists is not
// an error: the delete already happened.
func (s *DiskStore) Remove(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Refs are bare filenames produced by Save; reject anything that tries
	// to escape the root.
	if ref != filepath.Base(ref) {
		return fmt.Errorf("invalid document ref %q", ref)
	}
	err := os.Remove(filepath.Join(s.root, ref))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove document: %w", err)
	}
	return nil
}

func uniqueName(field, ext string) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%s-%d%s", field, time.Now().UnixNano(), ext)
	}
	return fmt.Sprintf("%s-%d-%x%s", field, time.Now().UnixMilli(), b, ext)
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
