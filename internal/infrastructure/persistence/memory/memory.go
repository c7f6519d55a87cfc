package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

// ApplicationRepository is an in-memory port.ApplicationRepository. Records
// are deep-copied on the way in and out so callers cannot alias the store.
type ApplicationRepository struct {
	mu   sync.RWMutex
	apps map[string]*entity.VisaApplication
}

// NewApplicationRepository creates an empty in-memory application store.
func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{apps: make(map[string]*entity.VisaApplication)}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *entity.VisaApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	r.apps[app.ID] = copyApplication(app)
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*entity.VisaApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return copyApplication(app), nil
}

func (r *ApplicationRepository) Update(ctx context.Context, app *entity.VisaApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apps[app.ID]; !ok {
		return entity.ErrNotFound
	}
	app.UpdatedAt = time.Now()
	r.apps[app.ID] = copyApplication(app)
	return nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return entity.ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = time.Now()
	return nil
}

func (r *ApplicationRepository) List(ctx context.Context, userID string, limit, offset int) ([]*entity.VisaApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var apps []*entity.VisaApplication
	for _, app := range r.apps {
		if userID != "" && app.UserID != userID {
			continue
		}
		apps = append(apps, copyApplication(app))
	}

	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})

	if offset > 0 {
		if offset >= len(apps) {
			return nil, nil
		}
		apps = apps[offset:]
	}
	if limit > 0 && limit < len(apps) {
		apps = apps[:limit]
	}
	return apps, nil
}

func copyApplication(app *entity.VisaApplication) *entity.VisaApplication {
	copied := *app
	copied.Applicants = append([]entity.Applicant(nil), app.Applicants...)
	return &copied
}

var _ port.ApplicationRepository = (*ApplicationRepository)(nil)

// HistoryRepository is an in-memory port.HistoryRepository.
type HistoryRepository struct {
	mu      sync.RWMutex
	entries []*entity.StatusHistory
}

// NewHistoryRepository creates an empty in-memory history store.
func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Create(ctx context.Context, history *entity.StatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	if history.Timestamp.IsZero() {
		history.Timestamp = time.Now()
	}
	copied := *history
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *HistoryRepository) GetByApplicationID(ctx context.Context, applicationID string) ([]*entity.StatusHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*entity.StatusHistory
	for _, entry := range r.entries {
		if entry.ApplicationID == applicationID {
			copied := *entry
			entries = append(entries, &copied)
		}
	}
	return entries, nil
}

var _ port.HistoryRepository = (*HistoryRepository)(nil)

// DocumentRepository is an in-memory port.DocumentRepository.
type DocumentRepository struct {
	mu     sync.RWMutex
	docs   map[string]*entity.Document
	events []*entity.DocumentHistory
}

// NewDocumentRepository creates an empty in-memory document store.
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{docs: make(map[string]*entity.Document)}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[doc.ID]; !ok {
		return entity.ErrNotFound
	}
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID string) ([]*entity.Document, error) {
	return r.list(func(doc *entity.Document) bool {
		return doc.ApplicationID == applicationID && !doc.Deleted
	})
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Document, error) {
	return r.list(func(doc *entity.Document) bool {
		return doc.UserID == userID && !doc.Deleted
	})
}

func (r *DocumentRepository) list(keep func(*entity.Document) bool) ([]*entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var docs []*entity.Document
	for _, doc := range r.docs {
		if keep(doc) {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

func (r *DocumentRepository) AppendHistory(ctx context.Context, event *entity.DocumentHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *DocumentRepository) GetHistory(ctx context.Context, documentID string) ([]*entity.DocumentHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []*entity.DocumentHistory
	for _, event := range r.events {
		if event.DocumentID == documentID {
			copied := *event
			events = append(events, &copied)
		}
	}
	return events, nil
}

var _ port.DocumentRepository = (*DocumentRepository)(nil)

// TransactionManager runs the function directly. The in-memory stores
// apply every write immediately, so there is nothing to roll back.
type TransactionManager struct{}

// NewTransactionManager creates the pass-through transaction manager.
func NewTransactionManager() *TransactionManager {
	return &TransactionManager{}
}

func (*TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ port.TransactionManager = (*TransactionManager)(nil)
