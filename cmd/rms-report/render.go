package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/rms-report/internal/report"
	"github.com/bigkaa/goartstore/rms-report/internal/service"
)

var (
	renderInput string
	renderOut   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Сформировать отчёт из JSON-заявки без HTTP-сервера",
	Long: `render читает JSON-заявку, прогоняет её через тот же конвейер, что и
сервер, и печатает идентификатор отчёта и путь к PDF.

Ассеты всегда разрешаются как file:// URI внутри RMS_STATIC_DIR.
Пути к фото в заявке считаются от директории JSON-файла.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(renderInput)
	if err != nil {
		return fmt.Errorf("ошибка открытия заявки: %w", err)
	}
	defer f.Close()

	sub, err := service.DecodeJSONSubmission(f)
	if err != nil {
		return err
	}
	if unknown := sub.UnknownCategories(a.registry); len(unknown) > 0 {
		a.logger.Warn("Неизвестные категории в заявке пропущены",
			slog.Any("categories", unknown),
		)
	}

	resolver, err := report.NewFileResolver(a.cfg.StaticDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := a.pipeline.Run(ctx, service.Request{Source: sub.Source(filepath.Dir(renderInput)), Resolver: resolver})
	if err != nil {
		return err
	}

	path := a.store.FullPath(res.StoragePath)
	if renderOut != "" {
		path, err = copyArtifact(path, renderOut)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "reference: %s\n", res.Meta.Reference)
	fmt.Fprintf(out, "overall:   %s\n", res.Meta.OverallStatus)
	fmt.Fprintf(out, "pdf:       %s\n", path)
	return nil
}

// copyArtifact копирует PDF в директорию dir и возвращает новый путь.
func copyArtifact(src, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("ошибка открытия отчёта: %w", err)
	}
	defer in.Close()

	dst := filepath.Join(dir, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("ошибка создания %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("ошибка копирования отчёта: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("ошибка закрытия %s: %w", dst, err)
	}
	return dst, nil
}
