package main

import (
	"fmt"
	"log/slog"

	"github.com/bigkaa/goartstore/rms-report/internal/config"
	"github.com/bigkaa/goartstore/rms-report/internal/domain/registry"
	"github.com/bigkaa/goartstore/rms-report/internal/render"
	"github.com/bigkaa/goartstore/rms-report/internal/report"
	"github.com/bigkaa/goartstore/rms-report/internal/service"
	"github.com/bigkaa/goartstore/rms-report/internal/storage/filestore"
)

// logoAsset — имя логотипа в assets/.
const logoAsset = "logo.svg"

// app — собранные компоненты, общие для serve и render.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *registry.Registry
	store     *filestore.FileStore
	templates *report.Templates
	chrome    *render.Chrome
	pipeline  *service.Pipeline
}

// loadApp читает конфигурацию и собирает компоненты.
// Вызывающий код закрывает движок печати через Close.
func loadApp() (*app, error) {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)

	// --- Инициализация компонентов ---

	// 1. Реестр категорий
	reg := registry.Default()

	// 2. Файловое хранилище и встроенный логотип
	store, err := filestore.New(cfg.StaticDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации FileStore: %w", err)
	}
	logoPath, err := store.InstallAsset(logoAsset, report.DefaultLogo)
	if err != nil {
		return nil, fmt.Errorf("ошибка установки логотипа: %w", err)
	}

	// 3. Шаблоны
	tmpl, err := report.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки шаблонов: %w", err)
	}

	// 4. Движок печати и финализация PDF
	chrome := render.NewChrome(render.ChromeConfig{
		Bin:         cfg.ChromeBin,
		RemoteURL:   cfg.ChromeURL,
		NoSandbox:   cfg.ChromeNoSandbox,
		Timeout:     cfg.RenderTimeout,
		Concurrency: cfg.RenderConcurrency,
		Logger:      logger,
	})

	// 5. Конвейер
	pipeline := service.NewPipeline(service.PipelineDeps{
		Parser:     service.NewParser(reg, store, logger),
		Aggregator: service.Aggregator{SummaryLimit: cfg.SummaryLimit},
		IDs:        service.NewReferenceGenerator(cfg.ReferencePrefix),
		Assembler:  report.NewAssembler(logoPath),
		Templates:  tmpl,
		Engine:     chrome,
		Finisher:   render.NewPDFFinisher(),
		Artifacts:  store,
		Logger:     logger,
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  reg,
		store:     store,
		templates: tmpl,
		chrome:    chrome,
		pipeline:  pipeline,
	}, nil
}

// Close освобождает движок печати.
func (a *app) Close() {
	if err := a.chrome.Close(); err != nil {
		a.logger.Warn("Ошибка остановки движка печати", slog.String("error", err.Error()))
	}
}
