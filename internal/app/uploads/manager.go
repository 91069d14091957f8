// Package uploads owns the lifecycle of stored files: the storage
// addressing scheme, the authorize-write-record ordering for creates,
// and the remove-then-delete ordering for deletes. Every file feature
// (reports, project documents, learning content) goes through the
// Manager so the orphan-avoidance guarantees live in one place.
package uploads

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/takimhub/takimhub/internal/app/policy/scopepolicy"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BlobStore is the slice of the object storage surface the lifecycle
// needs. waffle's storage.Store satisfies it.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
	PresignedURL(ctx context.Context, path string, opts *storage.PresignOptions) (string, error)
	URL(path string) string
}

// Manager orchestrates create/delete across the scope policy, the
// storage scheme, and the record store. It holds no per-request state;
// each call is an independent, strictly sequential operation.
type Manager struct {
	Roles   scopepolicy.RoleFinder
	Storage BlobStore
	Log     *zap.Logger
}

func NewManager(roles scopepolicy.RoleFinder, store BlobStore, logger *zap.Logger) *Manager {
	return &Manager{Roles: roles, Storage: store, Log: logger}
}

// CreateInput describes one upload.
type CreateInput struct {
	Actor       primitive.ObjectID
	Scope       models.Scope
	ScopeID     *primitive.ObjectID // nil for personal scope
	FileName    string
	Size        int64
	ContentType string
	Body        io.Reader
	IsPublic    bool
}

// Create runs the upload sequence:
//
//  1. authorize the upload; a denial aborts with no side effect
//  2. build the storage path
//  3. write the bytes; failure aborts, no record is created
//  4. insert the record via the callback; failure triggers a
//     best-effort compensating delete of the just-written object
//
// The ordering guarantees the record store never references an
// unwritten object. A failed compensation can leave a transient
// orphaned object, which is recoverable out of band and logged here.
//
// The returned Decision reports the authorization outcome; err is set
// only for storage or record-store failures.
func (m *Manager) Create(ctx context.Context, in CreateInput, insert func(ctx context.Context, f models.StoredFile) error) (models.StoredFile, scopepolicy.Decision, error) {
	ref := scopepolicy.ResourceRef{
		Scope:    in.Scope,
		ScopeID:  in.ScopeID,
		OwnerID:  in.Actor,
		IsPublic: in.IsPublic,
	}
	dec, err := scopepolicy.Authorize(ctx, m.Roles, in.Actor, ref, scopepolicy.OpUpload)
	if err != nil {
		return models.StoredFile{}, scopepolicy.Decision{}, fmt.Errorf("authorize upload: %w", err)
	}
	if !dec.Allowed {
		return models.StoredFile{}, dec, nil
	}

	pathOwner := in.Actor
	if in.Scope != models.ScopePersonal && in.ScopeID != nil {
		pathOwner = *in.ScopeID
	}
	now := time.Now().UTC()
	path := BuildPath(in.Scope, pathOwner, in.FileName, now)

	putOpts := &storage.PutOptions{ContentType: in.ContentType}
	if err := m.Storage.Put(ctx, path, in.Body, putOpts); err != nil {
		return models.StoredFile{}, dec, fmt.Errorf("storage write: %w", err)
	}

	f := models.StoredFile{
		Scope:       in.Scope,
		ScopeID:     in.ScopeID,
		OwnerID:     in.Actor,
		StoragePath: path,
		FileName:    SanitizeFilename(in.FileName),
		FileSize:    in.Size,
		IsPublic:    in.IsPublic,
		CreatedAt:   now,
	}

	if err := insert(ctx, f); err != nil {
		// Compensate so no object outlives a failed record insert.
		if delErr := m.Storage.Delete(ctx, path); delErr != nil {
			m.Log.Error("compensating storage delete failed; object orphaned",
				zap.String("path", path),
				zap.Error(delErr))
		}
		return models.StoredFile{}, dec, fmt.Errorf("record insert: %w", err)
	}

	return f, dec, nil
}

// Delete runs the removal sequence for an already-loaded file record:
//
//  1. authorize the delete (uploader-only); a denial aborts
//  2. remove the storage object; logged and tolerated on failure,
//     storage is eventually reconcilable
//  3. delete the record via the callback; this step's outcome is
//     authoritative for the operation
//
// A remove callback reporting zero deleted rows is the concurrent
// duplicate-delete case; it is returned as deleted=false with no
// error so callers can treat it as already-gone.
func (m *Manager) Delete(ctx context.Context, actor primitive.ObjectID, f models.StoredFile, remove func(ctx context.Context) (int64, error)) (deleted bool, dec scopepolicy.Decision, err error) {
	dec, err = scopepolicy.Authorize(ctx, m.Roles, actor, scopepolicy.Ref(f), scopepolicy.OpDelete)
	if err != nil {
		return false, scopepolicy.Decision{}, fmt.Errorf("authorize delete: %w", err)
	}
	if !dec.Allowed {
		return false, dec, nil
	}

	if err := m.Storage.Delete(ctx, f.StoragePath); err != nil {
		m.Log.Warn("storage object removal failed; continuing with record delete",
			zap.String("path", f.StoragePath),
			zap.Error(err))
	}

	n, err := remove(ctx)
	if err != nil {
		return false, dec, fmt.Errorf("record delete: %w", err)
	}
	return n > 0, dec, nil
}

// DownloadURL authorizes a read and issues a time-bounded retrieval
// URL. Authorization is re-verified on every call; links are never
// permanent, so revoked access takes effect as soon as an issued URL
// expires.
func (m *Manager) DownloadURL(ctx context.Context, actor primitive.ObjectID, f models.StoredFile, ttl time.Duration) (string, scopepolicy.Decision, error) {
	dec, err := scopepolicy.Authorize(ctx, m.Roles, actor, scopepolicy.Ref(f), scopepolicy.OpRead)
	if err != nil {
		return "", scopepolicy.Decision{}, fmt.Errorf("authorize read: %w", err)
	}
	if !dec.Allowed {
		return "", dec, nil
	}

	disposition := fmt.Sprintf("attachment; filename=%q", f.FileName)
	url, err := m.Storage.PresignedURL(ctx, f.StoragePath, &storage.PresignOptions{
		Expires:            ttl,
		ContentDisposition: disposition,
	})
	if err != nil {
		return "", dec, fmt.Errorf("presign: %w", err)
	}
	return url, dec, nil
}

// PublicURL returns the permanent public URL for objects that are
// deliberately world-readable (published learning content). Callers
// must only use this for resources created with that intent.
func (m *Manager) PublicURL(path string) string {
	return m.Storage.URL(path)
}
