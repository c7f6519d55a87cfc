// Package container provides dependency injection and lifecycle management
// for the visa application service following Clean Architecture principles.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/application/service"
	"github.com/hcaumo/VisaProject/internal/application/workflow"
	"github.com/hcaumo/VisaProject/internal/config"
	"github.com/hcaumo/VisaProject/internal/infrastructure/external/autentique"
	extstripe "github.com/hcaumo/VisaProject/internal/infrastructure/external/stripe"
	"github.com/hcaumo/VisaProject/internal/infrastructure/persistence/repository"
	"github.com/hcaumo/VisaProject/internal/infrastructure/persistence/sqlite"
	"github.com/hcaumo/VisaProject/internal/infrastructure/storage"
	"github.com/hcaumo/VisaProject/internal/infrastructure/worker"
	"github.com/hcaumo/VisaProject/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure - Data
	sqlDB        *sql.DB
	db           *sqlite.DB
	repositories *RepositoryBundle

	// Infrastructure - External
	paymentGateway  port.PaymentGateway
	signatureClient port.SignatureClient
	fileStorage     port.FileStorage

	// Application
	services *ServiceBundle
	engine   workflow.Engine
	workers  *worker.Manager

	// Lifecycle
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Applications port.ApplicationRepository
	Documents    port.DocumentRepository
	History      port.HistoryRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Applications service.ApplicationService
	Payments     service.PaymentService
	Agreements   service.AgreementService
	Documents    service.DocumentService
	Reports      service.ReportService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database and repositories
// 2. External clients (Stripe, Autentique)
// 3. Application services
// 4. Workflow engine
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	c.initExternalClients()
	c.logger.Info("External clients initialized")

	c.initServices()
	c.logger.Info("Application services initialized")

	c.engine = workflow.NewEngine(
		c.repositories.Applications,
		c.repositories.History,
		c.services.Payments,
		c.services.Agreements,
		c.db,
		c.logger,
	)
	c.logger.Info("Workflow engine initialized")

	c.workers = worker.NewManager(c.logger)
	if c.config.Worker.Enabled {
		c.workers.Register(worker.NewSignaturePoller(
			c.repositories.Applications,
			c.services.Agreements,
			c.config.Worker.SignaturePollInterval,
			c.logger,
		))
	}
	if err := c.workers.StartAll(c.ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	c.logger.Info("Background workers started")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
	}

	if c.cancel != nil {
		c.cancel()
	}

	// Services and external clients hold no resources of their own; the
	// database connection is the only thing left to release.
	if c.sqlDB != nil {
		if err := c.sqlDB.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.sqlDB != nil {
		if err := c.sqlDB.Ping(); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	} else {
		status.Components["database"] = ComponentHealth{
			Healthy: false,
			Message: "not initialized",
		}
		status.Overall = false
	}

	if c.engine != nil {
		status.Components["workflow"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["workflow"] = ComponentHealth{
			Healthy: false,
			Message: "not initialized",
		}
		status.Overall = false
	}

	if c.workers != nil && c.workers.IsRunning() {
		status.Components["workers"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["workers"] = ComponentHealth{
			Healthy: false,
			Message: "not running",
		}
		status.Overall = false
	}

	if c.repositories != nil {
		status.Components["repositories"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["repositories"] = ComponentHealth{
			Healthy: false,
			Message: "not initialized",
		}
		status.Overall = false
	}

	return status
}

// initDatabase opens SQLite, runs migrations and builds the repositories.
func (c *Container) initDatabase() error {
	dbConn, err := database.New(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return err
	}

	migrator := database.NewMigrator(dbConn, c.logger)
	if err := migrator.RunMigrations(c.config.Database.MigrationsDir); err != nil {
		dbConn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	sqlDB := dbConn.DB
	c.sqlDB = sqlDB
	c.db = sqlite.NewDB(sqlDB, c.logger)
	c.repositories = &RepositoryBundle{
		Applications: repository.NewApplicationRepository(sqlDB, c.logger),
		Documents:    repository.NewDocumentRepository(sqlDB, c.logger),
		History:      repository.NewHistoryRepository(sqlDB, c.logger),
	}
	return nil
}

func (c *Container) initExternalClients() {
	c.fileStorage = storage.NewDiskStorage(c.config.Storage.BaseDir, c.logger)
	c.paymentGateway = extstripe.NewClient(
		c.config.Stripe.SecretKey,
		c.config.Stripe.Sandbox,
		c.logger,
	)
	c.signatureClient = autentique.NewClient(
		c.config.Autentique.Token,
		c.config.Autentique.BaseURL,
		c.config.Autentique.Sandbox,
		c.config.Autentique.Timeout,
		c.logger,
	)
}

func (c *Container) initServices() {
	payments := service.NewPaymentService(
		c.paymentGateway,
		c.config.Stripe.Currency,
		c.config.Stripe.Timeout,
		c.logger,
	)
	agreements := service.NewAgreementService(
		c.signatureClient,
		service.AgreementDefaults{
			ConsultantName:    c.config.Agreement.ConsultantName,
			SignatureLocation: c.config.Agreement.SignatureLocation,
		},
		c.config.Autentique.Timeout,
		c.logger,
	)

	c.services = &ServiceBundle{
		Applications: service.NewApplicationService(c.repositories.Applications, c.repositories.History, c.logger),
		Payments:     payments,
		Agreements:   agreements,
		Documents:    service.NewDocumentService(c.repositories.Documents, c.fileStorage, c.logger),
		Reports:      service.NewReportService(c.repositories.Applications, payments, c.logger),
	}
}

// Getters for accessing container components

// DB returns the transaction manager.
func (c *Container) DB() port.TransactionManager {
	return c.db
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Engine returns the workflow engine.
func (c *Container) Engine() workflow.Engine {
	return c.engine
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}
