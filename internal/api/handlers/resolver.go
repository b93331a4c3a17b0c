// resolver.go — выбор стратегии разрешения ассетов для запроса.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/bigkaa/goartstore/rms-report/internal/report"
)

// AssetResolution выбирает Resolver для документа.
// В режиме file стратегия одна на процесс, в режиме http origin
// берётся из RMS_PUBLIC_BASE_URL или из запроса. Без RMS_PUBLIC_BASE_URL
// Chrome загружает ассеты с хоста, который назвал клиент в заголовке Host,
// поэтому при доступе извне адрес нужно задавать явно.
type AssetResolution struct {
	mode          report.AssetMode
	file          *report.FileResolver
	publicBaseURL string
}

// NewAssetResolution создаёт выбор стратегии.
func NewAssetResolution(mode report.AssetMode, staticRoot, publicBaseURL string) (*AssetResolution, error) {
	a := &AssetResolution{mode: mode, publicBaseURL: publicBaseURL}

	switch mode {
	case report.AssetModeFile:
		fr, err := report.NewFileResolver(staticRoot)
		if err != nil {
			return nil, err
		}
		a.file = fr
	case report.AssetModeHTTP:
		if publicBaseURL != "" {
			if _, err := report.NewHTTPResolver(publicBaseURL); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("неизвестная стратегия ассетов %q", mode)
	}

	return a, nil
}

// Mode возвращает выбранную стратегию.
func (a *AssetResolution) Mode() report.AssetMode {
	return a.mode
}

// UsesRequestHost сообщает, что origin ассетов берётся из заголовка Host
// запроса (режим http без RMS_PUBLIC_BASE_URL).
func (a *AssetResolution) UsesRequestHost() bool {
	return a.mode == report.AssetModeHTTP && a.publicBaseURL == ""
}

// ForRequest возвращает Resolver для документа, формируемого по запросу r.
func (a *AssetResolution) ForRequest(r *http.Request) (report.Resolver, error) {
	if a.mode == report.AssetModeFile {
		return a.file, nil
	}
	if a.publicBaseURL != "" {
		return report.NewHTTPResolver(a.publicBaseURL)
	}
	return report.NewHTTPResolver(requestOrigin(r))
}

// requestOrigin восстанавливает scheme://host запроса.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
