package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/domain/entity"
	"github.com/hcaumo/VisaProject/internal/infrastructure/persistence/memory"
	"github.com/hcaumo/VisaProject/internal/infrastructure/storage"
)

func newDocumentService(t *testing.T) DocumentService {
	t.Helper()
	files := storage.NewDiskStorage(t.TempDir(), zap.NewNop())
	return NewDocumentService(memory.NewDocumentRepository(), files, zap.NewNop())
}

var reviewer = Actor{UserID: "op-1", Name: "Operator"}

func TestDocumentService_UploadAndHistory(t *testing.T) {
	svc := newDocumentService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, &entity.Document{
		Name:          "passport.pdf",
		Type:          entity.DocumentTypePassportScan,
		UserID:        "user-1",
		ApplicationID: "app-1",
	}, reviewer)
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, entity.DocumentStatusPending, doc.Status)
	assert.False(t, doc.UploadedAt.IsZero())

	events, err := svc.History(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.HistoryActionUpload, events[0].Action)
	assert.Equal(t, "op-1", events[0].UserID)
}

func TestDocumentService_Upload_RequiresName(t *testing.T) {
	svc := newDocumentService(t)

	_, err := svc.Upload(context.Background(), &entity.Document{UserID: "user-1"}, reviewer)
	require.Error(t, err)
	_, ok := AsValidationError(err)
	assert.True(t, ok)
}

func TestDocumentService_UpdateStatus(t *testing.T) {
	svc := newDocumentService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, &entity.Document{Name: "photo.jpg", Type: entity.DocumentTypePhotoID, UserID: "user-1"}, reviewer)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, doc.ID, entity.DocumentStatusApproved, "looks good", reviewer)
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusApproved, updated.Status)
	assert.Equal(t, "looks good", updated.Notes)

	events, err := svc.History(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, entity.HistoryActionStatusChange, events[1].Action)
}

func TestDocumentService_UpdateStatus_Unknown(t *testing.T) {
	svc := newDocumentService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, &entity.Document{Name: "photo.jpg", UserID: "user-1"}, reviewer)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, doc.ID, "archived", "", reviewer)
	require.Error(t, err)
	_, ok := AsValidationError(err)
	assert.True(t, ok)
}

func TestDocumentService_SoftDelete(t *testing.T) {
	svc := newDocumentService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, &entity.Document{Name: "old.pdf", UserID: "user-1", ApplicationID: "app-1"}, reviewer)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, doc.ID, reviewer))

	// Gone from reads and listings.
	_, err = svc.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	docs, err := svc.ListByApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	// The history trail survives the delete.
	events, err := svc.History(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, entity.HistoryActionDelete, events[1].Action)
}

func TestDocumentService_ContentRoundTrip(t *testing.T) {
	svc := newDocumentService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, &entity.Document{Name: "passport.pdf", UserID: "user-1", ApplicationID: "app-1"}, reviewer)
	require.NoError(t, err)

	payload := []byte("%PDF-1.4 fake passport scan")
	stored, err := svc.StoreContent(ctx, doc.ID, "passport.pdf", "application/pdf", payload, reviewer)
	require.NoError(t, err)

	assert.NotEmpty(t, stored.FileURL)
	assert.Equal(t, int64(len(payload)), stored.FileSize)
	assert.Equal(t, "application/pdf", stored.MimeType)

	content, mimeType, err := svc.Content(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, payload, content)
	assert.Equal(t, "application/pdf", mimeType)

	events, err := svc.History(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, entity.HistoryActionUpdate, events[1].Action)
}

func TestDocumentService_Delete_ReclaimsContent(t *testing.T) {
	files := storage.NewDiskStorage(t.TempDir(), zap.NewNop())
	svc := NewDocumentService(memory.NewDocumentRepository(), files, zap.NewNop())
	ctx := context.Background()

	doc, err := svc.Upload(ctx, &entity.Document{Name: "passport.pdf", UserID: "user-1", ApplicationID: "app-1"}, reviewer)
	require.NoError(t, err)

	stored, err := svc.StoreContent(ctx, doc.ID, "passport.pdf", "application/pdf", []byte("%PDF-1.4 scan"), reviewer)
	require.NoError(t, err)
	path := stored.FileURL
	require.NotEmpty(t, path)

	require.NoError(t, svc.Delete(ctx, doc.ID, reviewer))

	// The binary is gone from storage along with the soft delete.
	_, err = files.Read(ctx, path)
	assert.Error(t, err)
}

func TestDocumentService_StoreContent_ReplacesPreviousFile(t *testing.T) {
	files := storage.NewDiskStorage(t.TempDir(), zap.NewNop())
	svc := NewDocumentService(memory.NewDocumentRepository(), files, zap.NewNop())
	ctx := context.Background()

	doc, err := svc.Upload(ctx, &entity.Document{Name: "photo", UserID: "user-1", ApplicationID: "app-1"}, reviewer)
	require.NoError(t, err)

	first, err := svc.StoreContent(ctx, doc.ID, "photo.jpg", "image/jpeg", []byte("jpeg bytes"), reviewer)
	require.NoError(t, err)

	second, err := svc.StoreContent(ctx, doc.ID, "photo.png", "image/png", []byte("png bytes"), reviewer)
	require.NoError(t, err)
	require.NotEqual(t, first.FileURL, second.FileURL)

	// The superseded binary was removed; the current one reads back.
	_, err = files.Read(ctx, first.FileURL)
	assert.Error(t, err)

	content, mimeType, err := svc.Content(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), content)
	assert.Equal(t, "image/png", mimeType)
}

func TestDocumentService_Content_NotStored(t *testing.T) {
	svc := newDocumentService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, &entity.Document{Name: "photo.jpg", UserID: "user-1"}, reviewer)
	require.NoError(t, err)

	_, _, err = svc.Content(ctx, doc.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestDocumentService_StoreContent_Empty(t *testing.T) {
	svc := newDocumentService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, &entity.Document{Name: "photo.jpg", UserID: "user-1"}, reviewer)
	require.NoError(t, err)

	_, err = svc.StoreContent(ctx, doc.ID, "photo.jpg", "image/jpeg", nil, reviewer)
	require.Error(t, err)
	_, ok := AsValidationError(err)
	assert.True(t, ok)
}

func TestDocumentService_ListByUser(t *testing.T) {
	svc := newDocumentService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, &entity.Document{Name: "a.pdf", UserID: "user-1"}, reviewer)
	require.NoError(t, err)
	_, err = svc.Upload(ctx, &entity.Document{Name: "b.pdf", UserID: "user-2"}, reviewer)
	require.NoError(t, err)

	docs, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a.pdf", docs[0].Name)
}
