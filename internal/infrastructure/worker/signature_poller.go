package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/application/service"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

// SignaturePoller watches applications waiting on signatures and records the
// signed document URL once the provider reports the agreement signed. It is
// a fallback for deployments without a signature webhook; it never changes
// application status, only fills in the signed URL.
type SignaturePoller struct {
	apps       port.ApplicationRepository
	agreements service.AgreementService
	logger     *zap.Logger

	pollInterval time.Duration
	batchSize    int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewSignaturePoller creates the poller. A non-positive interval falls back
// to one minute.
func NewSignaturePoller(
	apps port.ApplicationRepository,
	agreements service.AgreementService,
	pollInterval time.Duration,
	logger *zap.Logger,
) *SignaturePoller {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &SignaturePoller{
		apps:         apps,
		agreements:   agreements,
		logger:       logger,
		pollInterval: pollInterval,
		batchSize:    50,
	}
}

func (p *SignaturePoller) Name() string {
	return "SignaturePoller"
}

func (p *SignaturePoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("signature poller already running")
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	p.logger.Info("Signature poller started",
		zap.Duration("poll_interval", p.pollInterval))

	go p.loop(ctx)
	return nil
}

func (p *SignaturePoller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

func (p *SignaturePoller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *SignaturePoller) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	apps, err := p.apps.List(ctx, "", p.batchSize, 0)
	if err != nil {
		p.logger.Error("Signature poll could not list applications", zap.Error(err))
		return
	}

	var updated int
	for _, app := range apps {
		if app.Status != entity.StatusWaitingSignatures {
			continue
		}
		if app.LegalAgreement.DocumentID == "" || app.LegalAgreement.SignedURL != "" {
			continue
		}

		status, err := p.agreements.Status(ctx, app.LegalAgreement.DocumentID)
		if err != nil {
			p.logger.Warn("Signature status check failed",
				zap.String("application_id", app.ID),
				zap.String("document_id", app.LegalAgreement.DocumentID),
				zap.Error(err))
			continue
		}
		if status != "signed" {
			continue
		}

		url, err := p.agreements.SignedURL(ctx, app.LegalAgreement.DocumentID)
		if err != nil || url == "" {
			continue
		}

		app.LegalAgreement.SignedURL = url
		if err := p.apps.Update(ctx, app); err != nil {
			p.logger.Error("Could not record signed URL",
				zap.String("application_id", app.ID),
				zap.Error(err))
			continue
		}

		p.logger.Info("Agreement signed",
			zap.String("application_id", app.ID),
			zap.String("document_id", app.LegalAgreement.DocumentID))
		updated++
	}

	if updated > 0 {
		p.logger.Info("Signature poll completed", zap.Int("updated", updated))
	}
}

var _ Worker = (*SignaturePoller)(nil)
