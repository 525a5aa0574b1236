// Package storage archives original CV documents in an object store.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Object describes an archived document.
type Object struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Location is the bucket-qualified key, e.g. "cv-documents/candidates/candidate_001/…".
func (o *Object) Location() string {
	return o.Bucket + "/" + o.Key
}

// DocumentStore archives source documents.
type DocumentStore interface {
	// Put uploads the file at path under the candidate's prefix. A nil Object
	// with a nil error means archiving is disabled.
	Put(ctx context.Context, candidateID, path string) (*Object, error)
}

// NopStore discards documents.
type NopStore struct{}

// Put implements DocumentStore.
func (NopStore) Put(context.Context, string, string) (*Object, error) {
	return nil, nil
}

// ObjectKey builds a collision-free key for a candidate document.
func ObjectKey(candidateID, path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return fmt.Sprintf("candidates/%s/%s%s", candidateID, uuid.NewString(), ext)
}

// ContentType sniffs the file's MIME type, falling back to octet-stream.
func ContentType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
