package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/builder"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/filestore"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gateway/config"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gateway/handler"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gateway/handler/rpc"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gateway/server"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/generator"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/history"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/project"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/snapshot"
)

type App struct {
	server *server.Server
	gen    generator.Client
	ledger *history.Ledger
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Dependencies
	files, err := filestore.NewDiskStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	projects := project.NewFromEnv(filepath.Join(cfg.DataDir, "project_states.json"))
	snaps := snapshot.NewStore(files)
	histLog := history.NewLog(files)

	var mirror filestore.Store
	if cfg.Mirror.Enabled {
		s3, err := filestore.NewS3Store(filestore.S3Config{
			Endpoint:  cfg.Mirror.Endpoint,
			Region:    cfg.Mirror.Region,
			AccessKey: cfg.Mirror.AccessKey,
			SecretKey: cfg.Mirror.SecretKey,
			Bucket:    cfg.Mirror.Bucket,
			UseSSL:    cfg.Mirror.UseSSL,
		})
		if err != nil {
			log.Printf("build mirror disabled: %v", err)
		} else {
			mirror = s3
		}
	}
	var ledger *history.Ledger
	if cfg.Ledger.Enabled {
		ledger, err = history.OpenLedger(cfg.Ledger.Path)
		if err != nil {
			log.Printf("build ledger disabled: %v", err)
			ledger = nil
		}
	}
	archive := history.NewArchive(files, mirror, ledger)

	gen, err := newGenerator(ctx, cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}

	bus := builder.NewBus()
	b := builder.New(gen, files, projects, snaps, histLog, archive, bus)

	// Handlers
	buildHandler := rpc.NewBuildHandler(b)
	projectHandler := rpc.NewProjectHandler(projects, histLog, snaps)
	eventsHandler := rpc.NewEventsHandler(bus)
	previewHandler := handler.NewPreviewHandler(files)

	// Routing & Server
	mux := server.NewMux(buildHandler, projectHandler, eventsHandler, previewHandler)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
		gen:    gen,
		ledger: ledger,
	}, nil
}

func newGenerator(ctx context.Context, cfg config.GeneratorConfig) (generator.Client, error) {
	var base generator.Client
	switch cfg.Provider {
	case "fake":
		log.Println("GEMINI_API_KEY not set, using the scripted fake generator")
		base = generator.NewFakeClient()
	default:
		gc, err := generator.NewGeminiClient(ctx, cfg.Model)
		if err != nil {
			return nil, err
		}
		base = gc
	}
	return generator.Chain(base, generator.Retry(3, 500*time.Millisecond)), nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if a.gen != nil {
		_ = a.gen.Close()
	}
	if a.ledger != nil {
		_ = a.ledger.Close()
	}
	return err
}
