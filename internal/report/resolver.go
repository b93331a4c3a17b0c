// Пакет report — сборка контекста отчёта и разрешение ссылок на ассеты.
//
// Движок печати загружает изображения сам, вне браузера пользователя,
// поэтому относительные пути в документе не работают. Каждая ссылка
// переписывается одним Resolver на весь документ: либо file:// URI
// под корнем статики, либо абсолютный HTTP URL от origin запроса.
package report

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// AssetMode — стратегия разрешения ссылок на ассеты.
type AssetMode string

const (
	// AssetModeFile — file:// URI, движок читает файлы с диска
	AssetModeFile AssetMode = "file"
	// AssetModeHTTP — абсолютные URL, движок скачивает ассеты по HTTP
	AssetModeHTTP AssetMode = "http"
)

// StaticPrefix — URL-префикс, под которым Asset Server раздаёт корень статики.
const StaticPrefix = "/static/"

// ErrUnsafeReference — ссылка не является путём внутри корня статики.
var ErrUnsafeReference = errors.New("небезопасная ссылка на ассет")

// Base — контекст разрешения ссылок, передаётся движку печати.
type Base struct {
	Mode AssetMode
	// Root — абсолютная директория статики (file) или origin (http)
	Root string
	// Prefix — общий префикс всех разрешённых ссылок документа
	Prefix string
}

// Resolver переписывает путь относительно корня статики в ссылку,
// которую может загрузить движок печати.
type Resolver interface {
	Resolve(storagePath string) (string, error)
	Base() Base
}

// FileResolver — стратегия file://.
type FileResolver struct {
	root string
}

// NewFileResolver создаёт стратегию file:// для корня статики.
func NewFileResolver(staticRoot string) (*FileResolver, error) {
	abs, err := filepath.Abs(staticRoot)
	if err != nil {
		return nil, fmt.Errorf("некорректный корень статики %s: %w", staticRoot, err)
	}
	return &FileResolver{root: abs}, nil
}

// Resolve возвращает file:// URI файла.
func (r *FileResolver) Resolve(storagePath string) (string, error) {
	clean, err := cleanStoragePath(storagePath)
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(filepath.Join(r.root, filepath.FromSlash(clean))),
	}
	return u.String(), nil
}

// Base возвращает контекст разрешения.
func (r *FileResolver) Base() Base {
	u := url.URL{Scheme: "file", Path: strings.TrimSuffix(filepath.ToSlash(r.root), "/") + "/"}
	return Base{Mode: AssetModeFile, Root: r.root, Prefix: u.String()}
}

// HTTPResolver — стратегия абсолютных URL.
type HTTPResolver struct {
	origin *url.URL
}

// NewHTTPResolver создаёт стратегию для origin вида scheme://host[:port].
// Путь, query и fragment origin отбрасываются.
func NewHTTPResolver(origin string) (*HTTPResolver, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("некорректный origin %q: %w", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("origin %q: допустимы только схемы http и https", origin)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("origin %q: не указан хост", origin)
	}
	return &HTTPResolver{origin: &url.URL{Scheme: u.Scheme, Host: u.Host}}, nil
}

// Resolve возвращает абсолютный URL файла под StaticPrefix.
func (r *HTTPResolver) Resolve(storagePath string) (string, error) {
	clean, err := cleanStoragePath(storagePath)
	if err != nil {
		return "", err
	}
	u := *r.origin
	u.Path = StaticPrefix + clean
	return u.String(), nil
}

// Base возвращает контекст разрешения.
func (r *HTTPResolver) Base() Base {
	u := *r.origin
	u.Path = StaticPrefix
	return Base{Mode: AssetModeHTTP, Root: r.origin.String(), Prefix: u.String()}
}

// cleanStoragePath принимает только относительные пути без выхода
// за корень статики.
func cleanStoragePath(storagePath string) (string, error) {
	p := strings.ReplaceAll(storagePath, `\`, "/")
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "://") {
		return "", fmt.Errorf("%w: %q", ErrUnsafeReference, storagePath)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrUnsafeReference, storagePath)
		}
	}
	clean := path.Clean(p)
	if clean == "." {
		return "", fmt.Errorf("%w: %q", ErrUnsafeReference, storagePath)
	}
	return clean, nil
}
