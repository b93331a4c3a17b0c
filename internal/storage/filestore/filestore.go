// Пакет filestore — файлы на диске под корнем статики.
// Фотографии заявок (uploads/), готовые отчёты (reports/) и
// встроенные ассеты (assets/). Запись всегда атомарная:
// temp файл → запись + SHA-256 → fsync → rename.
package filestore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
	"github.com/bigkaa/goartstore/rms-report/internal/storage/attr"
)

// Поддиректории корня статики.
const (
	UploadsDir = "uploads"
	ReportsDir = "reports"
	AssetsDir  = "assets"
)

// maxBaseLen — предел длины санитизированного имени в имени хранения (байты).
const maxBaseLen = 80

// errEmpty — поток не содержал данных, файл не создан.
var errEmpty = errors.New("пустой файл")

// ErrReportNotFound — отчёт отсутствует или не завершён.
var ErrReportNotFound = errors.New("отчёт не найден")

// FileStore — управление файлами под корнем статики.
type FileStore struct {
	// root — абсолютный путь корня статики (RMS_STATIC_DIR)
	root string
}

// SaveResult — результат сохранения файла на диск.
type SaveResult struct {
	// StoragePath — путь относительно root, всегда через "/"
	StoragePath string
	// FullPath — абсолютный путь файла на диске
	FullPath string
	// Size — размер записанных данных в байтах
	Size int64
	// Checksum — SHA-256 хэш содержимого файла
	Checksum string
}

// New создаёт FileStore. Корень приводится к абсолютному пути,
// директории uploads/, reports/ и assets/ создаются при необходимости.
func New(root string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("некорректный путь статики %s: %w", root, err)
	}

	for _, dir := range []string{UploadsDir, ReportsDir, AssetsDir} {
		full := filepath.Join(abs, dir)
		if err := os.MkdirAll(full, 0o750); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию %s: %w", full, err)
		}
	}

	return &FileStore{root: abs}, nil
}

// Root возвращает абсолютный путь корня статики.
func (fs *FileStore) Root() string {
	return fs.root
}

// StorePhoto сохраняет фотографию категории в uploads/.
// Имя хранения: {categoryKey}_{token}_{sanitized}.
// Пустой поток — не ошибка: файл не создаётся, возвращается (nil, nil).
func (fs *FileStore) StorePhoto(categoryKey, originalFilename string, r io.Reader) (*model.PhotoRef, error) {
	storedName := generateStorageName(categoryKey, originalFilename)

	res, err := fs.writeAtomic(UploadsDir, storedName, r, false)
	if errors.Is(err, errEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &model.PhotoRef{
		StoredName:  storedName,
		CategoryKey: categoryKey,
		Reference:   res.StoragePath,
		Size:        res.Size,
	}, nil
}

// SaveArtifact сохраняет готовый отчёт в reports/ под заданным именем.
// Имя должно быть безопасным сегментом пути.
func (fs *FileStore) SaveArtifact(name string, data []byte) (*SaveResult, error) {
	if name != Sanitize(name) {
		return nil, fmt.Errorf("небезопасное имя артефакта %q", name)
	}
	return fs.writeAtomic(ReportsDir, name, bytes.NewReader(data), true)
}

// ArtifactExists проверяет наличие отчёта в reports/.
func (fs *FileStore) ArtifactExists(name string) bool {
	if name != Sanitize(name) {
		return false
	}
	info, err := os.Stat(filepath.Join(fs.root, ReportsDir, name))
	return err == nil && info.Mode().IsRegular()
}

// ReportMeta возвращает метаданные готового отчёта из его attr.json.
// Отчёт без attr.json не завершён и считается отсутствующим.
func (fs *FileStore) ReportMeta(name string) (*model.ReportMeta, error) {
	if !fs.ArtifactExists(name) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}

	meta, err := attr.Read(attr.AttrFilePath(filepath.Join(fs.root, ReportsDir, name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s без attr.json", ErrReportNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// DeleteArtifact удаляет отчёт и его attr.json из reports/.
// Отсутствие файлов не ошибка.
func (fs *FileStore) DeleteArtifact(name string) error {
	if name != Sanitize(name) {
		return fmt.Errorf("небезопасное имя артефакта %q", name)
	}
	fullPath := filepath.Join(fs.root, ReportsDir, name)
	if err := attr.Delete(attr.AttrFilePath(fullPath)); err != nil {
		return err
	}
	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления артефакта %s: %w", name, err)
	}
	return nil
}

// InstallAsset записывает встроенный ассет в assets/, если его там ещё нет
// или содержимое отличается. Возвращает путь относительно корня.
func (fs *FileStore) InstallAsset(name string, data []byte) (string, error) {
	if name != Sanitize(name) {
		return "", fmt.Errorf("небезопасное имя ассета %q", name)
	}

	storagePath := path.Join(AssetsDir, name)
	existing, err := os.ReadFile(fs.FullPath(storagePath))
	if err == nil && bytes.Equal(existing, data) {
		return storagePath, nil
	}

	if _, err := fs.writeAtomic(AssetsDir, name, bytes.NewReader(data), true); err != nil {
		return "", err
	}
	return storagePath, nil
}

// FullPath возвращает абсолютный путь для пути относительно корня.
func (fs *FileStore) FullPath(storagePath string) string {
	return filepath.Join(fs.root, filepath.FromSlash(storagePath))
}

// writeAtomic пишет поток в dir/name через temp файл с подсчётом SHA-256.
// При allowEmpty=false пустой поток удаляет temp файл и возвращает errEmpty.
func (fs *FileStore) writeAtomic(dir, name string, r io.Reader, allowEmpty bool) (*SaveResult, error) {
	fullPath := filepath.Join(fs.root, dir, name)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	hasher := sha256.New()
	size, err := io.Copy(f, io.TeeReader(r, hasher))
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if size == 0 && !allowEmpty {
		f.Close()
		os.Remove(tmpPath)
		return nil, errEmpty
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{
		StoragePath: path.Join(dir, name),
		FullPath:    fullPath,
		Size:        size,
		Checksum:    hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// generateStorageName генерирует имя фотографии на диске.
// Формат: {categoryKey}_{token}_{name}{ext}
// Пример: locks_3f2a9c1b7d4e8f60_front-door.jpg
func generateStorageName(categoryKey, originalFilename string) string {
	key := Sanitize(categoryKey)
	base := truncateBase(Sanitize(originalFilename), maxBaseLen)
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return fmt.Sprintf("%s_%s_%s", key, token, base)
}

// truncateBase ограничивает длину имени, сохраняя расширение.
// Обрезка по границе руны.
func truncateBase(name string, limit int) string {
	if len(name) <= limit {
		return name
	}

	ext := filepath.Ext(name)
	if len(ext) > 16 {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)

	keep := limit - len(ext)
	for keep > 0 && !utf8.RuneStart(stem[keep]) {
		keep--
	}
	return stem[:keep] + ext
}
