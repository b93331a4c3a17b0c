// Точка входа сервиса отчётов RMS: HTTP-сервер и офлайн-рендер заявки.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/rms-report/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "rms-report",
	Short: "Отчёты о соответствии минимальным стандартам аренды (RMS)",
	Long: `rms-report принимает заявку осмотра (статусы категорий, комментарии, фото)
и формирует PDF-отчёт о соответствии.

Конфигурация задаётся переменными окружения RMS_*.`,
	SilenceUsage: true,
	Version:      config.Version,
}

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "input", "i", "", "JSON-заявка (обязательно)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Директория для копии PDF (по умолчанию — только reports/)")
	_ = renderCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
