package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/rms-report/internal/api/handlers"
	"github.com/bigkaa/goartstore/rms-report/internal/config"
	"github.com/bigkaa/goartstore/rms-report/internal/report"
	"github.com/bigkaa/goartstore/rms-report/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP-сервер формы и API отчётов",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg

	// Стратегия разрешения ссылок на ассеты
	assets, err := handlers.NewAssetResolution(report.AssetMode(cfg.AssetMode), cfg.StaticDir, cfg.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("ошибка настройки ассетов: %w", err)
	}

	a.logger.Info("Сервис отчётов RMS запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("static_dir", cfg.StaticDir),
		slog.String("asset_mode", string(assets.Mode())),
	)
	if assets.UsesRequestHost() {
		a.logger.Warn("RMS_PUBLIC_BASE_URL не задан: Chrome загружает ассеты с хоста из заголовка Host запроса",
			slog.String("hint", "задайте RMS_PUBLIC_BASE_URL, если сервис доступен извне"),
		)
	}

	// Handlers
	reportsHandler := handlers.NewReportsHandler(
		a.pipeline,
		a.templates,
		a.registry.All(),
		assets,
		a.store,
		cfg.MaxUploadSize,
		a.logger,
	)
	healthHandler := handlers.NewHealthHandler(cfg.StaticDir, a.chrome, getDiskUsage)

	// Создание и запуск HTTP-сервера
	srv := server.New(cfg, a.logger, reportsHandler, healthHandler)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("ошибка сервера: %w", err)
	}

	a.logger.Info("Сервис отчётов RMS остановлен")
	return nil
}
