package service

import (
	"context"
	"errors"
	"os"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
	"github.com/bigkaa/goartstore/rms-report/internal/domain/registry"
	"github.com/bigkaa/goartstore/rms-report/internal/render"
	"github.com/bigkaa/goartstore/rms-report/internal/report"
	"github.com/bigkaa/goartstore/rms-report/internal/storage/attr"
	"github.com/bigkaa/goartstore/rms-report/internal/storage/filestore"
)

// fakeEngine запоминает разметку вместо печати.
type fakeEngine struct {
	markup []byte
	base   report.Base
	calls  int
	err    error
	// onConvert вызывается до возврата результата
	onConvert func()
}

func (e *fakeEngine) Convert(_ context.Context, markup []byte, base report.Base) ([]byte, error) {
	e.calls++
	e.markup = markup
	e.base = base
	if e.onConvert != nil {
		e.onConvert()
	}
	if e.err != nil {
		return nil, e.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

type fakeFinisher struct {
	props render.Properties
}

func (f *fakeFinisher) Finish(data []byte, props render.Properties) ([]byte, int, error) {
	f.props = props
	return data, 2, nil
}

type pipelineFixture struct {
	store    *filestore.FileStore
	engine   *fakeEngine
	finisher *fakeFinisher
	pipeline *Pipeline
}

func newPipelineFixture(t *testing.T, photos PhotoStore, artifacts ArtifactStore) *pipelineFixture {
	t.Helper()

	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	if photos == nil {
		photos = store
	}
	if artifacts == nil {
		artifacts = store
	}

	logoPath, err := store.InstallAsset("logo.svg", report.DefaultLogo)
	require.NoError(t, err)

	tmpl, err := report.LoadTemplates()
	require.NoError(t, err)

	f := &pipelineFixture{store: store, engine: &fakeEngine{}, finisher: &fakeFinisher{}}
	f.pipeline = NewPipeline(PipelineDeps{
		Parser:     NewParser(registry.Default(), photos, discardLogger()),
		Aggregator: Aggregator{},
		IDs:        NewReferenceGenerator("RMS"),
		Assembler:  report.NewAssembler(logoPath),
		Templates:  tmpl,
		Engine:     f.engine,
		Finisher:   f.finisher,
		Artifacts:  artifacts,
		Logger:     discardLogger(),
	})
	return f
}

func (f *pipelineFixture) fileResolver(t *testing.T) report.Resolver {
	t.Helper()
	r, err := report.NewFileResolver(f.store.Root())
	require.NoError(t, err)
	return r
}

func reportFiles(t *testing.T, store *filestore.FileStore) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(store.Root(), filestore.ReportsDir))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Пустая заявка: все категории N/A, отчёт формируется.
func TestPipeline_EmptySubmission(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)

	res, err := f.pipeline.Run(context.Background(), Request{Source: &MapSource{}, Resolver: f.fileResolver(t)})
	require.NoError(t, err)

	assert.Equal(t, 14, res.Meta.StandardsChecked)
	assert.Equal(t, 14, res.Aggregate.NotApplicableCount)
	assert.Equal(t, model.OverallCompliant.String(), res.Meta.OverallStatus)
	assert.Equal(t, 2, res.Meta.PageCount)
	assert.Equal(t, "reports/"+res.Meta.Artifact, res.StoragePath)
	assert.True(t, f.store.ArtifactExists(res.Meta.Artifact))

	meta, err := attr.Read(attr.AttrFilePath(f.store.FullPath(res.StoragePath)))
	require.NoError(t, err)
	assert.Equal(t, res.Meta.Reference, meta.Reference)
	assert.Equal(t, res.Meta.Checksum, meta.Checksum)

	assert.Equal(t, res.Meta.Reference, f.finisher.props.Reference)
	assert.Equal(t, "compliant", f.finisher.props.OverallStatus)
}

// Смешанные статусы с фото: все ссылки документа в одной стратегии.
func TestPipeline_MixedWithPhotos(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)

	src := &MapSource{
		Fields: map[string]string{
			FieldPropertyAddress: "1 Main St",
			"bathroom_status":    "compliant",
			"kitchen_status":     "non_compliant",
			"kitchen_comment":    "Oven missing",
		},
		Uploads: map[string][]Upload{
			"bathroom_photos": {bytesUpload("photo.jpg", []byte("a"))},
			"kitchen_photos":  {bytesUpload("photo.jpg", []byte("b"))},
		},
	}

	res, err := f.pipeline.Run(context.Background(), Request{Source: src, Resolver: f.fileResolver(t)})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Meta.NonCompliantCount)
	assert.Equal(t, 1, res.Meta.ActionsRequired)
	assert.Equal(t, 2, res.Meta.PhotoCount)
	assert.Equal(t, "action_required", res.Meta.OverallStatus)
	assert.Equal(t, "1 Main St", f.finisher.props.PropertyAddress)

	require.Len(t, res.Aggregate.Evidence, 2)
	assert.Equal(t, "kitchen", res.Aggregate.Evidence[0].Category.Key)

	assert.Equal(t, report.AssetModeFile, f.engine.base.Mode)
	markup := string(f.engine.markup)
	for _, ev := range res.Aggregate.Evidence {
		assert.Contains(t, markup, ev.Photo.StoredName)
	}
	assert.Contains(t, markup, f.engine.base.Prefix+"assets/logo.svg")
	assert.NotContains(t, markup, `src="uploads/`)
	assert.NotContains(t, markup, "http://")
}

func TestPipeline_HTTPResolver(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)
	r, err := report.NewHTTPResolver("http://reports.local:8080")
	require.NoError(t, err)

	src := &MapSource{Uploads: map[string][]Upload{
		"locks_photos": {bytesUpload("lock.png", []byte("png"))},
	}}

	_, err = f.pipeline.Run(context.Background(), Request{Source: src, Resolver: r})
	require.NoError(t, err)

	assert.Equal(t, report.AssetModeHTTP, f.engine.base.Mode)
	markup := string(f.engine.markup)
	assert.Contains(t, markup, "http://reports.local:8080/static/uploads/locks_")
	assert.Contains(t, markup, "http://reports.local:8080/static/assets/logo.svg")
	assert.NotContains(t, markup, "file://")
}

func TestPipeline_RenderFailure(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)
	f.engine.err = errors.New("chrome упал")

	_, err := f.pipeline.Run(context.Background(), Request{Source: &MapSource{}, Resolver: f.fileResolver(t)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenderFailure)
	assert.True(t, strings.Contains(err.Error(), "chrome упал"))
	assert.Empty(t, reportFiles(t, f.store))
}

func TestPipeline_StorageFailure(t *testing.T) {
	f := newPipelineFixture(t, failingPhotoStore{}, nil)

	src := &MapSource{Uploads: map[string][]Upload{
		"windows_photos": {bytesUpload("w.jpg", []byte("x"))},
	}}

	_, err := f.pipeline.Run(context.Background(), Request{Source: src, Resolver: f.fileResolver(t)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.Zero(t, f.engine.calls, "печать не должна запускаться")
	assert.Empty(t, reportFiles(t, f.store))
}

// brokenAttrStore сохраняет артефакт, но путь attr.json проходит через файл.
type brokenAttrStore struct {
	*filestore.FileStore
	deleted []string
}

func (s *brokenAttrStore) FullPath(storagePath string) string {
	return filepath.Join(s.Root(), "blocker", storagePath)
}

func (s *brokenAttrStore) DeleteArtifact(name string) error {
	s.deleted = append(s.deleted, name)
	return s.FileStore.DeleteArtifact(name)
}

func TestPipeline_AttrFailureRemovesArtifact(t *testing.T) {
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "blocker"), []byte("x"), 0o600))
	broken := &brokenAttrStore{FileStore: store}

	f := newPipelineFixture(t, nil, broken)

	_, err = f.pipeline.Run(context.Background(), Request{Source: &MapSource{}, Resolver: f.fileResolver(t)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageFailure)
	require.Len(t, broken.deleted, 1)
	assert.Empty(t, reportFiles(t, store))
}

func TestPipeline_UnsafeLogoIsRenderFailure(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)
	f.pipeline.assembler = report.NewAssembler("../outside.svg")

	_, err := f.pipeline.Run(context.Background(), Request{Source: &MapSource{}, Resolver: f.fileResolver(t)})
	assert.ErrorIs(t, err, ErrRenderFailure)
	assert.ErrorIs(t, err, report.ErrUnsafeReference)
	assert.Zero(t, f.engine.calls)
}

// Все категории соответствуют, фото нет.
func TestPipeline_AllCompliant(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)

	fields := make(map[string]string)
	for _, def := range registry.Default().All() {
		fields[def.StatusField()] = "compliant"
	}

	res, err := f.pipeline.Run(context.Background(), Request{
		Source:   &MapSource{Fields: fields},
		Resolver: f.fileResolver(t),
	})
	require.NoError(t, err)

	agg := res.Aggregate
	assert.Equal(t, 14, agg.StandardsChecked)
	assert.Equal(t, 14, agg.CompliantCount)
	assert.Zero(t, agg.NonCompliantCount)
	assert.Zero(t, agg.ActionsRequired)
	assert.Empty(t, agg.Evidence)
	assert.Equal(t, model.OverallCompliant, agg.OverallStatus)
	assert.Equal(t, "compliant", res.Meta.OverallStatus)
	assert.NotContains(t, string(f.engine.markup), "Photo evidence")
}

// Одна несоответствующая категория с двумя фото, остальные N/A:
// раздел доказательств начинается ровно с этих фото в порядке загрузки.
func TestPipeline_NonCompliantEvidenceFirst(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)

	src := &MapSource{
		Fields: map[string]string{
			"heating_status":  "non_compliant",
			"heating_comment": "No fixed heater in living room",
		},
		Uploads: map[string][]Upload{
			"heating_photos": {
				bytesUpload("living-room.jpg", []byte("first")),
				bytesUpload("bedroom.jpg", []byte("second")),
			},
		},
	}

	res, err := f.pipeline.Run(context.Background(), Request{Source: src, Resolver: f.fileResolver(t)})
	require.NoError(t, err)

	agg := res.Aggregate
	assert.Equal(t, 1, agg.NonCompliantCount)
	assert.Equal(t, 13, agg.NotApplicableCount)
	assert.Equal(t, model.OverallActionRequired, agg.OverallStatus)

	require.Len(t, agg.Evidence, 2)
	for _, ev := range agg.Evidence[:2] {
		assert.Equal(t, "heating", ev.Category.Key)
		assert.Equal(t, model.StatusNonCompliant, ev.Status)
	}
	assert.True(t, strings.HasSuffix(agg.Evidence[0].Photo.StoredName, "_living-room.jpg"))
	assert.True(t, strings.HasSuffix(agg.Evidence[1].Photo.StoredName, "_bedroom.jpg"))

	markup := string(f.engine.markup)
	first := strings.Index(markup, agg.Evidence[0].Photo.StoredName)
	second := strings.Index(markup, agg.Evidence[1].Photo.StoredName)
	require.True(t, first >= 0 && second >= 0)
	assert.Less(t, first, second)
}

// Имя файла с обходом директорий не выводит запись за пределы uploads/.
func TestPipeline_TraversalFilenameStaysInUploads(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)
	root := f.store.Root()

	src := &MapSource{Uploads: map[string][]Upload{
		"windows_photos": {bytesUpload("../../x.jpg", []byte("payload"))},
	}}

	res, err := f.pipeline.Run(context.Background(), Request{Source: src, Resolver: f.fileResolver(t)})
	require.NoError(t, err)
	require.Len(t, res.Aggregate.Evidence, 1)

	_, err = os.Stat(filepath.Join(root, "..", "x.jpg"))
	assert.True(t, os.IsNotExist(err), "файл вне корня статики")
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "..", "x.jpg"))
	assert.True(t, os.IsNotExist(err), "файл вне корня статики")

	stored := regexp.MustCompile(`^windows_[0-9a-f]{16}_x\.jpg$`)
	var uploads []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		switch filepath.Dir(rel) {
		case filestore.UploadsDir:
			uploads = append(uploads, d.Name())
		case filestore.ReportsDir, filestore.AssetsDir:
		default:
			t.Errorf("неожиданный файл %s", rel)
		}
		return nil
	})
	require.NoError(t, err)

	require.Len(t, uploads, 1)
	assert.Regexp(t, stored, uploads[0])
	assert.Equal(t, filestore.UploadsDir+"/"+uploads[0], res.Aggregate.Evidence[0].Photo.Reference)
}

// Отмена до начала разбора — не отказ хранилища.
func TestPipeline_CancelledBeforeParse(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline.Run(ctx, Request{Source: &MapSource{}, Resolver: f.fileResolver(t)})
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	assert.NotErrorIs(t, err, ErrStorageFailure)
	assert.Zero(t, f.engine.calls)
	assert.Equal(t, "cancelled", resultLabel(err))
}

// Отмена во время печати — не отказ печати, артефакт не пишется.
func TestPipeline_CancelledDuringPrint(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.engine.onConvert = cancel
	f.engine.err = context.Canceled

	_, err := f.pipeline.Run(ctx, Request{Source: &MapSource{}, Resolver: f.fileResolver(t)})
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	assert.NotErrorIs(t, err, ErrRenderFailure)
	assert.Empty(t, reportFiles(t, f.store))
}
