// pipeline.go — конвейер формирования отчёта: заявка → PDF-артефакт.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bigkaa/goartstore/rms-report/internal/api/middleware"
	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
	"github.com/bigkaa/goartstore/rms-report/internal/render"
	"github.com/bigkaa/goartstore/rms-report/internal/report"
	"github.com/bigkaa/goartstore/rms-report/internal/storage/attr"
	"github.com/bigkaa/goartstore/rms-report/internal/storage/filestore"
)

// DocumentRenderer — шаблонизатор документа.
type DocumentRenderer interface {
	Render(name string, data any) ([]byte, error)
}

// PrintEngine — движок пагинации: HTML → PDF.
type PrintEngine interface {
	Convert(ctx context.Context, markup []byte, base report.Base) ([]byte, error)
}

// Finisher — проверка и дополнение напечатанного документа.
type Finisher interface {
	Finish(data []byte, props render.Properties) ([]byte, int, error)
}

// ArtifactStore — хранилище готовых отчётов.
type ArtifactStore interface {
	SaveArtifact(name string, data []byte) (*filestore.SaveResult, error)
	DeleteArtifact(name string) error
	FullPath(storagePath string) string
}

// Request — один запуск конвейера.
type Request struct {
	Source Source
	// Resolver — единая стратегия разрешения ссылок для документа
	Resolver report.Resolver
}

// Result — готовый отчёт.
type Result struct {
	Aggregate model.ReportAggregate
	Meta      model.ReportMeta
	// StoragePath — путь артефакта относительно корня статики
	StoragePath string
}

// Pipeline — оркестратор формирования отчёта.
type Pipeline struct {
	parser     *Parser
	aggregator Aggregator
	ids        *ReferenceGenerator
	assembler  *report.Assembler
	templates  DocumentRenderer
	engine     PrintEngine
	finisher   Finisher
	artifacts  ArtifactStore
	logger     *slog.Logger
}

// PipelineDeps — зависимости конвейера.
type PipelineDeps struct {
	Parser     *Parser
	Aggregator Aggregator
	IDs        *ReferenceGenerator
	Assembler  *report.Assembler
	Templates  DocumentRenderer
	Engine     PrintEngine
	Finisher   Finisher
	Artifacts  ArtifactStore
	Logger     *slog.Logger
}

// NewPipeline создаёт конвейер.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		parser:     deps.Parser,
		aggregator: deps.Aggregator,
		ids:        deps.IDs,
		assembler:  deps.Assembler,
		templates:  deps.Templates,
		engine:     deps.Engine,
		finisher:   deps.Finisher,
		artifacts:  deps.Artifacts,
		logger:     deps.Logger.With(slog.String("component", "report_pipeline")),
	}
}

// Run выполняет конвейер строго последовательно.
//
// Поток:
//  1. Разбор заявки и сохранение фото
//  2. Агрегаты
//  3. Идентификатор отчёта и имя артефакта
//  4. Сборка документа с разрешением ссылок
//  5. Шаблон → HTML
//  6. Печать в PDF и финализация
//  7. Запись артефакта и attr.json
//
// Любая ошибка прерывает заявку целиком. Уже сохранённые фото остаются
// на диске; артефакт без attr.json удаляется.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	res, err := p.run(ctx, req)
	middleware.ReportsTotal.WithLabelValues(resultLabel(err)).Inc()
	return res, err
}

func (p *Pipeline) run(ctx context.Context, req Request) (*Result, error) {
	// 1. Разбор
	sub, err := p.parser.Parse(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	middleware.PhotosStoredTotal.Add(float64(sub.PhotoCount()))

	// 2. Агрегаты
	agg := p.aggregator.Aggregate(sub.Records)

	// 3. Идентификаторы
	ids, err := p.ids.Next()
	if err != nil {
		return nil, renderError("reference", err)
	}
	agg.Reference = ids.Reference
	agg.GeneratedAt = ids.GeneratedAt

	// 4. Сборка документа
	doc, err := p.assembler.Assemble(sub, &agg, req.Resolver)
	if err != nil {
		return nil, renderError("assemble", err)
	}

	// 5. Шаблон
	markup, err := p.templates.Render(report.ReportTemplate, doc)
	if err != nil {
		return nil, renderError("template", err)
	}

	// 6. Печать
	start := time.Now()
	raw, err := p.engine.Convert(ctx, markup, doc.Base)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled("print", ctxErr)
		}
		return nil, renderError("print", err)
	}
	middleware.RenderDuration.Observe(time.Since(start).Seconds())

	data, pages, err := p.finisher.Finish(raw, render.Properties{
		Reference:       agg.Reference,
		PropertyAddress: sub.Metadata.PropertyAddress,
		OverallStatus:   agg.OverallStatus.String(),
	})
	if err != nil {
		return nil, renderError("finish", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, cancelled("finish", err)
	}

	// 7. Артефакт
	saved, err := p.artifacts.SaveArtifact(ids.Artifact, data)
	if err != nil {
		return nil, storageError("save_artifact", err)
	}

	meta := model.ReportMeta{
		Reference:         agg.Reference,
		Artifact:          ids.Artifact,
		GeneratedAt:       agg.GeneratedAt,
		PropertyAddress:   sub.Metadata.PropertyAddress,
		StandardsChecked:  agg.StandardsChecked,
		NonCompliantCount: agg.NonCompliantCount,
		ActionsRequired:   agg.ActionsRequired,
		OverallStatus:     agg.OverallStatus.String(),
		PhotoCount:        agg.PhotoCount,
		PageCount:         pages,
		Size:              saved.Size,
		Checksum:          saved.Checksum,
	}
	if err := attr.Write(attr.AttrFilePath(p.artifacts.FullPath(saved.StoragePath)), &meta); err != nil {
		if delErr := p.artifacts.DeleteArtifact(ids.Artifact); delErr != nil {
			p.logger.Error("Ошибка удаления артефакта после сбоя attr.json",
				slog.String("artifact", ids.Artifact),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, storageError("save_attr", err)
	}

	p.logger.Info("Отчёт сформирован",
		slog.String("reference", meta.Reference),
		slog.String("artifact", meta.Artifact),
		slog.Int("standards_checked", meta.StandardsChecked),
		slog.Int("non_compliant", meta.NonCompliantCount),
		slog.Int("photos", meta.PhotoCount),
		slog.Int("pages", meta.PageCount),
		slog.String("asset_mode", string(doc.Base.Mode)),
	)

	return &Result{Aggregate: agg, Meta: meta, StoragePath: saved.StoragePath}, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrStorageFailure):
		return "storage_failure"
	case errors.Is(err, ErrRenderFailure):
		return "render_failure"
	case IsCancelled(err):
		return "cancelled"
	}
	return "error"
}
