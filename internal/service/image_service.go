package service

import (
	"context"
	"io"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/internal/repository/specification"
	"pattern-sphere-be/internal/repository/unitofwork"
	"pattern-sphere-be/pkg/blobstore"
)

// BlobStore is the part of blobstore.Store the services depend on.
type BlobStore interface {
	CheckAndStore(data []byte, filename string) (*blobstore.Upload, error)
	Delete(hash string) bool
	Open(hash string) (io.ReadCloser, string, error)
	PublicURL(hash string) string
}

type IImageService interface {
	// Open streams a stored blob and its sniffed MIME type.
	Open(ctx context.Context, hash string) (io.ReadCloser, string, error)
	// IsReferenced reports whether any image value row holds hash.
	IsReferenced(ctx context.Context, hash string) (bool, error)
}

type imageService struct {
	uowFactory unitofwork.RepositoryFactory
	blobs      BlobStore
	logger     logger.ILogger
}

func NewImageService(uowFactory unitofwork.RepositoryFactory, blobs BlobStore, log logger.ILogger) IImageService {
	return &imageService{
		uowFactory: uowFactory,
		blobs:      blobs,
		logger:     log,
	}
}

func (s *imageService) Open(ctx context.Context, hash string) (io.ReadCloser, string, error) {
	return s.blobs.Open(hash)
}

func (s *imageService) IsReferenced(ctx context.Context, hash string) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ok, err := isReferenced(ctx, uow, hash)
	if err != nil {
		return false, storageFailure(s.logger, "ImageService", "IsReferenced", err)
	}
	return ok, nil
}

// isReferenced scans the value table of every image feature for hash.
func isReferenced(ctx context.Context, uow unitofwork.UnitOfWork, hash string) (bool, error) {
	features, err := uow.FeatureRepository().FindAll(ctx, specification.ByType{Type: string(entity.FeatureTypeImage)})
	if err != nil {
		return false, err
	}
	for _, f := range features {
		n, err := uow.FeatureValueRepository().Count(ctx, f, specification.ByHash{Hash: hash})
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

// blobSweep tracks the blobs one operation touches. Hashes whose reference
// was dropped, and blobs this operation wrote, are checked with Collect
// inside the transaction; Commit unlinks the orphans once the transaction
// is durable. Abort cleans up blobs written by an operation that did not
// commit.
//
// Abort checks references and deletes outside any transaction. A concurrent
// operation that starts referencing the same hash between that check and the
// delete loses its blob. The window is accepted: it needs two uploads of the
// same bytes racing a rollback, and the lost blob is written again by the
// next upload of those bytes.
type blobSweep struct {
	uowFactory unitofwork.RepositoryFactory
	blobs      BlobStore
	logger     logger.ILogger
	module     string

	released map[string]struct{}
	written  map[string]struct{}
	orphans  []string
	done     bool
}

func newBlobSweep(uowFactory unitofwork.RepositoryFactory, blobs BlobStore, log logger.ILogger, module string) *blobSweep {
	return &blobSweep{
		uowFactory: uowFactory,
		blobs:      blobs,
		logger:     log,
		module:     module,
		released:   map[string]struct{}{},
		written:    map[string]struct{}{},
	}
}

func (s *blobSweep) Release(hash string) {
	if hash != "" {
		s.released[hash] = struct{}{}
	}
}

func (s *blobSweep) Stored(upload *blobstore.Upload) {
	if upload != nil && upload.Stored {
		s.written[upload.Hash] = struct{}{}
	}
}

func (s *blobSweep) Collect(ctx context.Context, uow unitofwork.UnitOfWork) error {
	seen := map[string]struct{}{}
	for _, set := range []map[string]struct{}{s.released, s.written} {
		for hash := range set {
			if _, ok := seen[hash]; ok {
				continue
			}
			seen[hash] = struct{}{}
			ref, err := isReferenced(ctx, uow, hash)
			if err != nil {
				return err
			}
			if !ref {
				s.orphans = append(s.orphans, hash)
			}
		}
	}
	return nil
}

func (s *blobSweep) Commit() {
	s.done = true
	for _, hash := range s.orphans {
		if s.blobs.Delete(hash) {
			s.logger.Info(s.module, "image blob removed", map[string]interface{}{"hash": hash})
		}
	}
}

// Abort is deferred by callers; it does nothing after Commit.
func (s *blobSweep) Abort(ctx context.Context) {
	if s.done || len(s.written) == 0 {
		return
	}
	s.done = true
	uow := s.uowFactory.NewUnitOfWork(ctx)
	for hash := range s.written {
		ref, err := isReferenced(ctx, uow, hash)
		if err != nil {
			s.logger.Warn(s.module, "could not check image blob after rollback", map[string]interface{}{"hash": hash, "error": err.Error()})
			continue
		}
		if !ref {
			s.blobs.Delete(hash)
		}
	}
}
