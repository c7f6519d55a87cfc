package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

// Actor identifies who performed a document action, for the history trail.
type Actor struct {
	UserID string
	Name   string
}

// DocumentService manages the registry of uploaded supporting documents.
// Deletes are soft and every mutation appends a history event. The binary
// content lives in file storage; StoreContent and Content move it in and out.
type DocumentService interface {
	Upload(ctx context.Context, doc *entity.Document, actor Actor) (*entity.Document, error)
	Get(ctx context.Context, id string) (*entity.Document, error)
	Update(ctx context.Context, id string, name, notes string, actor Actor) (*entity.Document, error)
	UpdateStatus(ctx context.Context, id, status, notes string, actor Actor) (*entity.Document, error)
	Delete(ctx context.Context, id string, actor Actor) error
	ListByApplication(ctx context.Context, applicationID string) ([]*entity.Document, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Document, error)
	History(ctx context.Context, documentID string) ([]*entity.DocumentHistory, error)
	StoreContent(ctx context.Context, id, filename, mimeType string, content []byte, actor Actor) (*entity.Document, error)
	Content(ctx context.Context, id string) ([]byte, string, error)
}

type documentService struct {
	docs   port.DocumentRepository
	files  port.FileStorage
	logger *zap.Logger
}

// NewDocumentService creates the document registry service.
func NewDocumentService(docs port.DocumentRepository, files port.FileStorage, logger *zap.Logger) DocumentService {
	return &documentService{docs: docs, files: files, logger: logger}
}

func (s *documentService) Upload(ctx context.Context, doc *entity.Document, actor Actor) (*entity.Document, error) {
	if doc.Name == "" {
		return nil, &ValidationError{Fails: []entity.FieldError{{Field: "name", Message: "name is required"}}}
	}
	if doc.Type == "" {
		doc.Type = entity.DocumentTypeOther
	}
	doc.Status = entity.DocumentStatusPending
	doc.Deleted = false
	doc.UploadedAt = time.Now()

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.appendEvent(ctx, doc.ID, entity.HistoryActionUpload, actor,
		fmt.Sprintf("Document %q uploaded", doc.Name)); err != nil {
		return nil, err
	}

	s.logger.Info("Document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("type", doc.Type),
		zap.String("user_id", doc.UserID))

	return doc, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*entity.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Deleted {
		return nil, entity.ErrNotFound
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, id string, name, notes string, actor Actor) (*entity.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		doc.Name = name
	}
	doc.Notes = notes
	now := time.Now()
	doc.UpdatedAt = &now

	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.appendEvent(ctx, doc.ID, entity.HistoryActionUpdate, actor, "Document metadata updated"); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) UpdateStatus(ctx context.Context, id, status, notes string, actor Actor) (*entity.Document, error) {
	switch status {
	case entity.DocumentStatusPending, entity.DocumentStatusApproved, entity.DocumentStatusRejected:
	default:
		return nil, &ValidationError{Fails: []entity.FieldError{{Field: "status", Message: "unknown document status"}}}
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := doc.Status
	doc.Status = status
	if notes != "" {
		doc.Notes = notes
	}
	now := time.Now()
	doc.UpdatedAt = &now

	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.appendEvent(ctx, doc.ID, entity.HistoryActionStatusChange, actor,
		fmt.Sprintf("Status changed from %s to %s", previous, status)); err != nil {
		return nil, err
	}

	s.logger.Info("Document status changed",
		zap.String("document_id", doc.ID),
		zap.String("previous", previous),
		zap.String("status", status))

	return doc, nil
}

// Delete marks the document deleted and reclaims its stored binary. The
// record and its history remain; the document just stops appearing in
// reads.
func (s *documentService) Delete(ctx context.Context, id string, actor Actor) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if doc.FileURL != "" {
		if err := s.files.Delete(ctx, doc.FileURL); err != nil {
			s.logger.Warn("Could not remove stored file",
				zap.String("document_id", doc.ID),
				zap.String("path", doc.FileURL),
				zap.Error(err))
		} else {
			doc.FileURL = ""
			doc.FileSize = 0
			doc.MimeType = ""
		}
	}

	doc.Deleted = true
	now := time.Now()
	doc.UpdatedAt = &now

	if err := s.docs.Update(ctx, doc); err != nil {
		return err
	}

	return s.appendEvent(ctx, doc.ID, entity.HistoryActionDelete, actor,
		fmt.Sprintf("Document %q deleted", doc.Name))
}

func (s *documentService) ListByApplication(ctx context.Context, applicationID string) ([]*entity.Document, error) {
	return s.docs.ListByApplication(ctx, applicationID)
}

func (s *documentService) ListByUser(ctx context.Context, userID string) ([]*entity.Document, error) {
	return s.docs.ListByUser(ctx, userID)
}

// StoreContent writes the document binary to file storage and records the
// file path, size and mime type on the metadata record.
func (s *documentService) StoreContent(ctx context.Context, id, filename, mimeType string, content []byte, actor Actor) (*entity.Document, error) {
	if len(content) == 0 {
		return nil, &ValidationError{Fails: []entity.FieldError{{Field: "file", Message: "file is empty"}}}
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	path := contentPath(doc, filename)
	if err := s.files.Save(ctx, path, content); err != nil {
		return nil, err
	}

	// A re-upload with a different extension lands on a new path; the old
	// file would be orphaned otherwise.
	if doc.FileURL != "" && doc.FileURL != path {
		if err := s.files.Delete(ctx, doc.FileURL); err != nil {
			s.logger.Warn("Could not remove superseded file",
				zap.String("document_id", doc.ID),
				zap.String("path", doc.FileURL),
				zap.Error(err))
		}
	}

	doc.FileURL = path
	doc.FileSize = int64(len(content))
	doc.MimeType = mimeType
	now := time.Now()
	doc.UpdatedAt = &now

	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.appendEvent(ctx, doc.ID, entity.HistoryActionUpdate, actor,
		fmt.Sprintf("File %q stored (%d bytes)", filename, len(content))); err != nil {
		return nil, err
	}

	s.logger.Info("Document content stored",
		zap.String("document_id", doc.ID),
		zap.String("path", path),
		zap.Int("size", len(content)))

	return doc, nil
}

// Content returns the stored binary and its mime type.
func (s *documentService) Content(ctx context.Context, id string) ([]byte, string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if doc.FileURL == "" {
		return nil, "", entity.ErrNotFound
	}

	content, err := s.files.Read(ctx, doc.FileURL)
	if err != nil {
		return nil, "", err
	}
	return content, doc.MimeType, nil
}

// contentPath groups files by application so an application's documents sit
// together on disk. The document id keeps names collision-free.
func contentPath(doc *entity.Document, filename string) string {
	group := doc.ApplicationID
	if group == "" {
		group = "unassigned"
	}
	return fmt.Sprintf("documents/%s/%s%s", group, doc.ID, filepath.Ext(filename))
}

func (s *documentService) History(ctx context.Context, documentID string) ([]*entity.DocumentHistory, error) {
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.docs.GetHistory(ctx, documentID)
}

func (s *documentService) appendEvent(ctx context.Context, documentID, action string, actor Actor, details string) error {
	return s.docs.AppendHistory(ctx, &entity.DocumentHistory{
		DocumentID: documentID,
		Action:     action,
		Timestamp:  time.Now(),
		UserID:     actor.UserID,
		UserName:   actor.Name,
		Details:    details,
	})
}
