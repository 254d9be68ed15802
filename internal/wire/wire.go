// Package wire provides dependency injection for the robodb application.
// It creates the singleton App with lazy initialization.
package wire

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/robodb/internal/adapters/cli"
	"github.com/example/robodb/internal/adapters/filesystem"
	"github.com/example/robodb/internal/adapters/sqlite"
	"github.com/example/robodb/internal/app"
	"github.com/example/robodb/internal/config"
	"github.com/example/robodb/internal/db"
	"github.com/example/robodb/internal/logging"
	"github.com/example/robodb/internal/ports/primary"
)

// App holds the storage handle and every service built on top of it.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Handle *db.Handle

	RobotService    primary.RobotService
	TransferService primary.TransferService
	DebugService    primary.DebugService
}

// New opens the database named by cfg, runs its migrations and wires the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	return newApp(ctx, cfg, logger, os.Stdin)
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, stdin io.Reader) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	handle, err := db.Open(ctx, cfg.Database.Path, db.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	files, err := filesystem.NewTransferAdapter(cfg.Export.Dir, stdin)
	if err != nil {
		handle.Close()
		return nil, err
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected handle
	robotRepo := sqlite.NewRobotRepository(handle)
	inspector := sqlite.NewSchemaInspector(handle)

	// Create services (primary ports implementation)
	robotService := app.NewRobotService(robotRepo, logger)
	transferService := app.NewTransferService(robotService, files, files, logger)
	debugService := app.NewDebugService(inspector, db.ExpectedSchema())

	return &App{
		Config:          cfg,
		Logger:          logger,
		Handle:          handle,
		RobotService:    robotService,
		TransferService: transferService,
		DebugService:    debugService,
	}, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	_ = a.Logger.Sync()
	return a.Handle.Close()
}

// RobotAdapter returns a new RobotAdapter writing to out.
// Each call creates a new adapter (adapters are stateless translators).
func (a *App) RobotAdapter(out io.Writer) *cliadapter.RobotAdapter {
	return cliadapter.NewRobotAdapter(a.RobotService, out)
}

// TransferAdapter returns a new TransferAdapter writing to out.
func (a *App) TransferAdapter(out io.Writer) *cliadapter.TransferAdapter {
	return cliadapter.NewTransferAdapter(a.TransferService, out)
}

// DebugAdapter returns a new DebugAdapter writing to out.
func (a *App) DebugAdapter(out io.Writer) *cliadapter.DebugAdapter {
	return cliadapter.NewDebugAdapter(a.DebugService, out)
}

// ============================================================================
// Process-wide singleton used by the CLI
// ============================================================================

var (
	configDir string
	logLevel  string

	current *App
	initErr error
	once    sync.Once
	mu      sync.Mutex
)

// Configure sets where the singleton reads its configuration and overrides
// the configured log level when level is non-empty. It must be called
// before the first Get.
func Configure(dir, level string) {
	mu.Lock()
	defer mu.Unlock()
	configDir = dir
	logLevel = level
}

// ConfigDir returns the configured directory, or the default when unset.
func ConfigDir() (string, error) {
	mu.Lock()
	dir := configDir
	mu.Unlock()
	if dir != "" {
		return dir, nil
	}
	return config.DefaultDir()
}

// LoadConfig reads the configuration the singleton would use.
func LoadConfig() (*config.Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	mu.Unlock()
	return cfg, nil
}

// NewLogger builds the stderr logger for cfg.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, os.Stderr)
}

// Get returns the singleton App, initializing it on first use.
func Get() (*App, error) {
	once.Do(initApp)
	return current, initErr
}

// initApp initializes the App.
// This is called once via sync.Once.
func initApp() {
	cfg, err := LoadConfig()
	if err != nil {
		initErr = err
		return
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		initErr = err
		return
	}

	current, initErr = New(context.Background(), cfg, logger)
}

// Shutdown closes the singleton if it was initialized.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return nil
	}
	return current.Close()
}
