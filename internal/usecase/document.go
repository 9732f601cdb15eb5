package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

const (
	MaxDocumentSize     = 10 << 20
	DownloadURLLifetime = 15 * time.Minute
)

var documentContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

type UploadDocumentInput struct {
	OwnerType    string
	OwnerID      string
	DocumentType string
	FileName     string
	ContentType  string
	SizeBytes    int64
	ExpiryDate   string
	Body         io.Reader
}

type DocumentService struct {
	Repo   entity.DocumentRepository
	Blobs  BlobStore
	Audit  *AuditLogger
	logger *zap.Logger
	now    func() time.Time
}

func NewDocumentService(repo entity.DocumentRepository, blobs BlobStore, audit *AuditLogger, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{Repo: repo, Blobs: blobs, Audit: audit, logger: logger, now: time.Now}
}

func (s *DocumentService) Upload(ctx context.Context, actor Actor, input UploadDocumentInput) (*entity.Document, error) {
	var errs []ValidationError
	owner := entity.OwnerType(strings.ToUpper(input.OwnerType))
	if !owner.Valid() {
		errs = append(errs, ValidationError{"owner_type", "is invalid"})
	}
	if input.OwnerID == "" {
		errs = append(errs, ValidationError{"owner_id", "is required"})
	}
	errs = requireText(errs, "document_type", input.DocumentType, 2, 50)
	name := sanitizeFileName(input.FileName)
	if name == "" {
		errs = append(errs, ValidationError{"file_name", "is required"})
	}
	if !documentContentTypes[input.ContentType] {
		errs = append(errs, ValidationError{"content_type", "must be PDF, JPEG or PNG"})
	}
	if input.SizeBytes <= 0 || input.SizeBytes > MaxDocumentSize {
		errs = append(errs, ValidationError{"file", "must be between 1 byte and 10MB"})
	}
	var expiry *time.Time
	if input.ExpiryDate != "" {
		d, ok := parseDate(input.ExpiryDate)
		if !ok {
			errs = append(errs, ValidationError{"expiry_date", "must be a valid date (YYYY-MM-DD)"})
		}
		expiry = &d
	}
	if input.Body == nil {
		errs = append(errs, ValidationError{"file", "is required"})
	}
	if err := validationFailed(errs); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	key := fmt.Sprintf("documents/%s/%s/%s-%s", strings.ToLower(string(owner)), input.OwnerID, id, name)
	if err := s.Blobs.Upload(ctx, key, input.ContentType, input.Body); err != nil {
		return nil, &TechnicalError{Code: "STORAGE_ERROR", Message: "failed to store document", Err: err}
	}

	now := s.now()
	d := &entity.Document{
		ID:           id,
		OwnerType:    owner,
		OwnerID:      input.OwnerID,
		DocumentType: strings.ToUpper(input.DocumentType),
		FileName:     name,
		ContentType:  input.ContentType,
		SizeBytes:    input.SizeBytes,
		StorageKey:   key,
		ExpiryDate:   expiry,
		UploadedBy:   actor.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, d); err != nil {
		if delErr := s.Blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned document blob", zap.String("key", key), zap.Error(delErr))
		}
		return nil, dbError("failed to save document", err)
	}
	s.Audit.Record(ctx, actor, "DOCUMENT_UPLOADED", "DOCUMENT", d.ID, map[string]string{
		"owner_type": string(owner),
		"owner_id":   input.OwnerID,
	})
	return d, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*entity.Document, error) {
	d, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("document", id)
		}
		return nil, dbError("failed to load document", err)
	}
	return d, nil
}

func (s *DocumentService) ListByOwner(ctx context.Context, ownerType, ownerID string) ([]*entity.Document, error) {
	owner := entity.OwnerType(strings.ToUpper(ownerType))
	if !owner.Valid() {
		return nil, Validation("owner_type %q is invalid", ownerType)
	}
	docs, err := s.Repo.ListByOwner(ctx, owner, ownerID)
	if err != nil {
		return nil, dbError("failed to list documents", err)
	}
	return docs, nil
}

func (s *DocumentService) DownloadURL(ctx context.Context, actor Actor, id string) (string, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.Blobs.PresignedURL(ctx, d.StorageKey, DownloadURLLifetime)
	if err != nil {
		return "", &TechnicalError{Code: "STORAGE_ERROR", Message: "failed to sign download url", Err: err}
	}
	s.Audit.Record(ctx, actor, "DOCUMENT_DOWNLOADED", "DOCUMENT", d.ID, nil)
	return url, nil
}

// Delete hides the document. The stored blob is retained.
func (s *DocumentService) Delete(ctx context.Context, actor Actor, id string) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	d.SoftDelete(actor.UserID, s.now())
	if err := s.Repo.Update(ctx, d); err != nil {
		return dbError("failed to delete document", err)
	}
	s.Audit.Record(ctx, actor, "DOCUMENT_DELETED", "DOCUMENT", d.ID, nil)
	return nil
}

func (s *DocumentService) ListExpiring(ctx context.Context, withinDays int) ([]*entity.Document, error) {
	if withinDays < 0 || withinDays > 365 {
		return nil, Validation("days must be between 0 and 365")
	}
	docs, err := s.Repo.ListExpiringBefore(ctx, s.now().AddDate(0, 0, withinDays))
	if err != nil {
		return nil, dbError("failed to list expiring documents", err)
	}
	return docs, nil
}

func sanitizeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.ReplaceAll(base, " ", "_")
}
