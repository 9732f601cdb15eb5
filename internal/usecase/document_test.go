package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

var documentNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func newDocumentService() (*DocumentService, *MockDocumentRepository, *MockBlobStore, *recordingSink) {
	repo := new(MockDocumentRepository)
	blobs := new(MockBlobStore)
	sink := &recordingSink{}
	svc := NewDocumentService(repo, blobs, NewAuditLogger(sink, nil), nil)
	svc.now = func() time.Time { return documentNow }
	return svc, repo, blobs, sink
}

func leaseUpload() UploadDocumentInput {
	return UploadDocumentInput{
		OwnerType:    "tenant",
		OwnerID:      "t-1",
		DocumentType: "lease",
		FileName:     "my lease.pdf",
		ContentType:  "application/pdf",
		SizeBytes:    4,
		ExpiryDate:   "2027-08-31",
		Body:         strings.NewReader("%PDF"),
	}
}

func TestDocumentService_Upload(t *testing.T) {
	svc, repo, blobs, sink := newDocumentService()

	var key string
	blobs.On("Upload", mock.Anything, mock.Anything, "application/pdf", mock.Anything).
		Run(func(args mock.Arguments) { key = args.String(1) }).
		Return(nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Document")).Return(nil)

	d, err := svc.Upload(context.Background(), Actor{UserID: "pm"}, leaseUpload())

	require.NoError(t, err)
	assert.Equal(t, entity.OwnerTenant, d.OwnerType)
	assert.Equal(t, "LEASE", d.DocumentType)
	assert.Equal(t, "my_lease.pdf", d.FileName)
	assert.Equal(t, "pm", d.UploadedBy)
	assert.Equal(t, key, d.StorageKey)
	assert.True(t, strings.HasPrefix(key, "documents/tenant/t-1/"+d.ID+"-"), key)
	assert.True(t, strings.HasSuffix(key, "my_lease.pdf"), key)
	require.NotNil(t, d.ExpiryDate)
	assert.Equal(t, time.Date(2027, 8, 31, 0, 0, 0, 0, time.UTC), *d.ExpiryDate)
	assert.Equal(t, documentNow, d.CreatedAt)
	assert.Equal(t, []string{"DOCUMENT_UPLOADED"}, sink.actions())
}

func TestDocumentService_Upload_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UploadDocumentInput)
	}{
		{"unknown owner", func(in *UploadDocumentInput) { in.OwnerType = "landlord" }},
		{"missing owner id", func(in *UploadDocumentInput) { in.OwnerID = "" }},
		{"executable", func(in *UploadDocumentInput) { in.ContentType = "application/x-msdownload" }},
		{"too large", func(in *UploadDocumentInput) { in.SizeBytes = MaxDocumentSize + 1 }},
		{"bad expiry", func(in *UploadDocumentInput) { in.ExpiryDate = "31/08/2027" }},
		{"no body", func(in *UploadDocumentInput) { in.Body = nil }},
		{"directory name", func(in *UploadDocumentInput) { in.FileName = "/" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, blobs, _ := newDocumentService()
			in := leaseUpload()
			tt.mutate(&in)

			_, err := svc.Upload(context.Background(), Actor{}, in)

			assert.Equal(t, CodeValidation, ErrorCode(err))
			blobs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestDocumentService_Upload_StorageFailure(t *testing.T) {
	svc, repo, blobs, _ := newDocumentService()
	blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied"))

	_, err := svc.Upload(context.Background(), Actor{}, leaseUpload())

	var te *TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "STORAGE_ERROR", te.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_RemovesBlobWhenSaveFails(t *testing.T) {
	svc, repo, blobs, sink := newDocumentService()

	var key string
	blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { key = args.String(1) }).
		Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
	blobs.On("Delete", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Upload(context.Background(), Actor{}, leaseUpload())

	var te *TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "DATABASE_ERROR", te.Code)
	blobs.AssertCalled(t, "Delete", mock.Anything, key)
	assert.Empty(t, sink.actions())
}

func TestDocumentService_DownloadURL(t *testing.T) {
	svc, repo, blobs, sink := newDocumentService()
	d := &entity.Document{ID: "d-1", StorageKey: "documents/tenant/t-1/d-1-lease.pdf"}

	repo.On("FindByID", mock.Anything, "d-1").Return(d, nil)
	repo.On("FindByID", mock.Anything, "missing").Return(nil, entity.ErrNotFound)
	blobs.On("PresignedURL", mock.Anything, d.StorageKey, DownloadURLLifetime).Return("https://signed.example/d-1", nil)

	url, err := svc.DownloadURL(context.Background(), Actor{UserID: "pm"}, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/d-1", url)
	assert.Equal(t, []string{"DOCUMENT_DOWNLOADED"}, sink.actions())

	_, err = svc.DownloadURL(context.Background(), Actor{}, "missing")
	assert.Equal(t, CodeNotFound, ErrorCode(err))
}

func TestDocumentService_Delete_KeepsBlob(t *testing.T) {
	svc, repo, blobs, _ := newDocumentService()
	d := &entity.Document{ID: "d-1", StorageKey: "k"}

	repo.On("FindByID", mock.Anything, "d-1").Return(d, nil)
	repo.On("Update", mock.Anything, d).Return(nil)

	err := svc.Delete(context.Background(), Actor{UserID: "admin"}, "d-1")

	require.NoError(t, err)
	assert.True(t, d.Deleted)
	assert.Equal(t, "admin", d.DeletedBy)
	require.NotNil(t, d.DeletedAt)
	assert.Equal(t, documentNow, *d.DeletedAt)
	blobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDocumentService_ListExpiring(t *testing.T) {
	svc, repo, _, _ := newDocumentService()
	repo.On("ListExpiringBefore", mock.Anything, documentNow.AddDate(0, 0, 30)).Return([]*entity.Document{{ID: "d-1"}}, nil)

	docs, err := svc.ListExpiring(context.Background(), 30)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	for _, days := range []int{-1, 366} {
		_, err := svc.ListExpiring(context.Background(), days)
		assert.Equal(t, CodeValidation, ErrorCode(err), "days=%d", days)
	}
}

func TestDocumentService_ListByOwner_InvalidOwner(t *testing.T) {
	svc, repo, _, _ := newDocumentService()

	_, err := svc.ListByOwner(context.Background(), "bank", "b-1")

	assert.Equal(t, CodeValidation, ErrorCode(err))
	repo.AssertNotCalled(t, "ListByOwner", mock.Anything, mock.Anything, mock.Anything)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "lease_2026.pdf", sanitizeFileName("  lease 2026.pdf "))
	assert.Equal(t, "passport.png", sanitizeFileName(`C:\scans\passport.png`))
	assert.Equal(t, "id.jpg", sanitizeFileName("../../etc/id.jpg"))
	assert.Empty(t, sanitizeFileName(""))
}
