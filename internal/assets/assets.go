package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Meta describes an upload at save time.
type Meta struct {
	OriginalName string
	ContentType  string
}

// Store is the asset-store contract. Save failures are fatal to the
// enclosing operation. Delete never fails the caller; a false outcome is
// logged by the adapter and otherwise ignored. Rollback is the uniform
// cleanup every mutating operation invokes when it rejects or fails after
// uploads have already been stored.
type Store interface {
	Save(ctx context.Context, data []byte, meta Meta) (string, error)
	Delete(ctx context.Context, ref string) bool
	Exists(ctx context.Context, ref string) bool
	Rollback(ctx context.Context, refs []string)
}

// Disk stores assets as files under a single directory, addressed by
// generated filenames.
type Disk struct {
	dir    string
	logger *zap.Logger
}

// NewDisk creates the directory if needed and returns a disk-backed store.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset dir: %w", err)
	}
	return &Disk{dir: dir, logger: util.GetLogger()}, nil
}

// Save writes the payload under a generated filename and returns it as the
// asset reference. The original extension is preserved.
func (d *Disk) Save(ctx context.Context, data []byte, meta Meta) (string, error) {
	ref := uuid.New().String() + filepath.Ext(filepath.Base(meta.OriginalName))
	path := filepath.Join(d.dir, ref)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store asset %s: %w", ref, err)
	}

	util.AssetSavesTotal.Inc()
	d.logger.Debug("Asset stored",
		zap.String("ref", ref),
		zap.String("original_name", meta.OriginalName),
		zap.Int("bytes", len(data)))
	return ref, nil
}

// Delete removes the referenced asset. A missing asset counts as success;
// any other failure is logged and reported as false, never raised.
func (d *Disk) Delete(ctx context.Context, ref string) bool {
	path := filepath.Join(d.dir, filepath.Base(ref))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return true
	}

	if err := os.Remove(path); err != nil {
		util.AssetDeletesFailedTotal.Inc()
		d.logger.Error("Failed to delete asset",
			zap.String("ref", ref),
			zap.Error(err))
		return false
	}
	return true
}

// Exists reports whether the referenced asset is present.
func (d *Disk) Exists(ctx context.Context, ref string) bool {
	_, err := os.Stat(filepath.Join(d.dir, filepath.Base(ref)))
	return err == nil
}

// Rollback deletes every reference, swallowing individual failures.
func (d *Disk) Rollback(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if !d.Delete(ctx, ref) {
			d.logger.Warn("Rollback left an orphaned asset", zap.String("ref", ref))
		}
	}
}
