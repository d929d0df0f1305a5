package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/watchpost/watchpost/models"
	"github.com/watchpost/watchpost/registry"
)

// Terminal failure kinds of the ingestion pipeline. Controllers translate
// them to responses with errors.Is; none of them should ever escape as a
// panic.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoFile       = errors.New("no file")
	ErrBadExtension = errors.New("bad extension")
	ErrTooLarge     = errors.New("file too large")
	ErrStorage      = errors.New("storage failed")
	ErrStore        = errors.New("store failed")
)

// MediaInserter is the slice of the metadata store the service needs.
type MediaInserter interface {
	Insert(ctx context.Context, m *models.Media) error
}

// UploadRequest carries one untrusted upload submission.
type UploadRequest struct {
	DeviceID string
	Token    string
	Filename string // original client filename, untrusted
	Payload  io.Reader
	Size     int64 // declared content length; <0 when unknown
}

// UploadResult describes an accepted upload.
type UploadResult struct {
	ID        uint
	Filename  string
	URL       string
	MediaType string
}

// Service is the ingestion pipeline: authenticate, validate, name, store,
// record. All collaborators are injected so tests can run it against
// fabricated registries and in-memory stores.
type Service struct {
	registry *registry.Registry
	writer   *Writer
	store    MediaInserter
	maxBytes int64
	log      *zap.SugaredLogger
	now      func() time.Time
}

// NewService wires an ingestion service. maxBytes caps a single payload;
// zero disables the cap.
func NewService(reg *registry.Registry, writer *Writer, store MediaInserter, maxBytes int64, log *zap.SugaredLogger) *Service {
	return &Service{
		registry: reg,
		writer:   writer,
		store:    store,
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
}

// Authorize checks a claimed device/token pair against the registry.
func (s *Service) Authorize(deviceID, token string) bool {
	return s.registry.Authorize(deviceID, token)
}

// Submit runs the full pipeline for one upload. On success exactly one
// file exists under the storage root and exactly one metadata row was
// inserted. A metadata failure after the write leaves an orphaned file;
// that gap is logged, not compensated.
func (s *Service) Submit(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if !s.registry.Authorize(req.DeviceID, req.Token) {
		return nil, ErrUnauthorized
	}
	if req.Payload == nil || req.Size == 0 {
		return nil, ErrNoFile
	}
	if s.maxBytes > 0 && req.Size > s.maxBytes {
		return nil, ErrTooLarge
	}

	safe := SanitizeFilename(req.Filename)
	ext := ExtOf(safe)
	if !ExtAllowed(ext) {
		return nil, ErrBadExtension
	}

	name := StoredName(req.DeviceID, ext, s.now())
	written, err := s.writer.Write(name, req.Payload, s.maxBytes)
	if err != nil {
		return nil, err
	}
	if written == 0 {
		_ = s.writer.Remove(name)
		return nil, ErrNoFile
	}

	rec := &models.Media{
		DeviceID:  req.DeviceID,
		Filename:  name,
		MediaType: KindForExt(ext),
		Mime:      MimeForExt(ext),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		// The file is already durable; record the orphan for external
		// reconciliation instead of guessing at compensation.
		s.log.Errorw("media record insert failed, file orphaned",
			"filename", name, "device_id", req.DeviceID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	s.log.Infow("upload accepted",
		"device_id", req.DeviceID, "filename", name,
		"media_type", rec.MediaType, "bytes", written)

	return &UploadResult{
		ID:        rec.ID,
		Filename:  name,
		URL:       "/media/" + name,
		MediaType: rec.MediaType,
	}, nil
}
