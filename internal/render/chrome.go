// Пакет render — печать HTML-документа в PDF через headless Chrome
// и финальная обработка артефакта.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/semaphore"

	"github.com/bigkaa/goartstore/rms-report/internal/report"
)

// ErrEngineClosed — движок печати остановлен.
var ErrEngineClosed = errors.New("движок печати остановлен")

// waitImagesJS дожидается загрузки (или отказа) всех изображений документа.
const waitImagesJS = `() => Promise.all(Array.from(document.images)
	.filter(img => !img.complete)
	.map(img => new Promise(done => { img.onload = done; img.onerror = done; })))`

// ChromeConfig — параметры движка печати.
type ChromeConfig struct {
	// Bin — путь к локальному Chrome. Пусто — выбор launcher по умолчанию.
	Bin string
	// RemoteURL — DevTools websocket внешнего Chrome. Пусто — запуск локального.
	RemoteURL string
	// NoSandbox — запуск с --no-sandbox (контейнеры)
	NoSandbox bool
	// Timeout — предельное время печати одного документа
	Timeout time.Duration
	// Concurrency — максимум одновременно печатаемых документов
	Concurrency int
	// ScratchDir — директория временных HTML-файлов. Пусто — os.TempDir().
	ScratchDir string
	Logger     *slog.Logger
}

func (c *ChromeConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 2
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Chrome — движок печати на go-rod. Браузер запускается лениво
// при первом документе и перезапускается после сбоя соединения.
type Chrome struct {
	cfg    ChromeConfig
	sem    *semaphore.Weighted
	logger *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewChrome создаёт движок печати. Chrome не запускается до первого вызова.
func NewChrome(cfg ChromeConfig) *Chrome {
	cfg.defaults()
	return &Chrome{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.Concurrency)),
		logger: cfg.Logger.With(slog.String("component", "print_engine")),
	}
}

// Convert печатает разметку в PDF.
// В режиме file документ открывается из временного файла: Chrome
// не загружает file:// ресурсы со страницы about:blank. В режиме http
// разметка подставляется в пустую страницу, что работает и с удалённым Chrome.
func (c *Chrome) Convert(ctx context.Context, markup []byte, base report.Base) ([]byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("ожидание движка печати: %w", err)
	}
	defer c.sem.Release(1)

	browser, err := c.connect()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		c.reset()
		return nil, fmt.Errorf("ошибка открытия вкладки: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			c.logger.Debug("Ошибка закрытия вкладки", slog.String("error", err.Error()))
		}
	}()

	switch base.Mode {
	case report.AssetModeFile:
		path, err := c.writeScratch(markup)
		if err != nil {
			return nil, err
		}
		defer os.Remove(path)

		u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
		if err := page.Navigate(u.String()); err != nil {
			return nil, fmt.Errorf("ошибка загрузки документа: %w", err)
		}
	case report.AssetModeHTTP:
		if err := page.SetDocumentContent(string(markup)); err != nil {
			return nil, fmt.Errorf("ошибка загрузки документа: %w", err)
		}
	default:
		return nil, fmt.Errorf("неизвестная стратегия ассетов %q", base.Mode)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("ошибка ожидания загрузки: %w", err)
	}
	if _, err := page.Eval(waitImagesJS); err != nil {
		return nil, fmt.Errorf("ошибка ожидания изображений: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка печати в PDF: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения PDF: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("движок печати вернул пустой документ")
	}

	return data, nil
}

// Ping проверяет доступность браузера (для /health/ready).
func (c *Chrome) Ping(ctx context.Context) error {
	browser, err := c.connect()
	if err != nil {
		return err
	}
	if _, err := browser.Context(ctx).Version(); err != nil {
		c.reset()
		return fmt.Errorf("браузер не отвечает: %w", err)
	}
	return nil
}

// Close останавливает браузер. Повторный вызов безопасен.
func (c *Chrome) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.cleanupLocked()
}

func (c *Chrome) connect() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrEngineClosed
	}
	if c.browser != nil {
		return c.browser, nil
	}

	wsURL := c.cfg.RemoteURL
	if wsURL != "" {
		c.logger.Info("Подключение к внешнему Chrome", slog.String("url", wsURL))
	} else {
		l := launcher.New().Headless(true)
		if c.cfg.Bin != "" {
			l = l.Bin(c.cfg.Bin)
		}
		if c.cfg.NoSandbox {
			l = l.NoSandbox(true)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("ошибка запуска Chrome: %w", err)
		}
		wsURL = u
		c.lnch = l
		c.logger.Info("Локальный Chrome запущен", slog.String("url", wsURL))
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if c.lnch != nil {
			c.lnch.Cleanup()
			c.lnch = nil
		}
		return nil, fmt.Errorf("ошибка подключения к Chrome: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		c.logger.Warn("Не удалось отключить проверку сертификатов",
			slog.String("error", err.Error()),
		)
	}

	c.browser = b
	return b, nil
}

// reset сбрасывает соединение; следующий документ перезапустит браузер.
func (c *Chrome) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.cleanupLocked(); err != nil {
		c.logger.Warn("Ошибка остановки Chrome", slog.String("error", err.Error()))
	}
}

func (c *Chrome) cleanupLocked() error {
	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	if c.lnch != nil {
		c.lnch.Cleanup()
		c.lnch = nil
	}
	return err
}

func (c *Chrome) writeScratch(markup []byte) (string, error) {
	f, err := os.CreateTemp(c.cfg.ScratchDir, "rms-doc-*.html")
	if err != nil {
		return "", fmt.Errorf("ошибка создания временного документа: %w", err)
	}
	if _, err := f.Write(markup); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("ошибка записи временного документа: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("ошибка записи временного документа: %w", err)
	}
	abs, err := filepath.Abs(f.Name())
	if err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return abs, nil
}
