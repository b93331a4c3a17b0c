package attr

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
)

// testMetadata создаёт тестовые метаданные отчёта.
func testMetadata() *model.ReportMeta {
	return &model.ReportMeta{
		Reference:         "RMS-20261019-4K2Q9Z",
		Artifact:          "rms_report_0b9f.pdf",
		GeneratedAt:       time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		PropertyAddress:   "12 Example St, Fitzroy VIC 3065",
		StandardsChecked:  14,
		NonCompliantCount: 2,
		ActionsRequired:   2,
		OverallStatus:     "action_required",
		PhotoCount:        3,
		PageCount:         4,
		Size:              20480,
		Checksum:          "abc123def456",
	}
}

// TestWriteAndRead проверяет запись и чтение attr.json.
func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	meta := testMetadata()
	path := AttrFilePath(filepath.Join(dir, meta.Artifact))

	if err := Write(path, meta); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}

	readMeta, err := Read(path)
	if err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}

	if readMeta.Reference != meta.Reference {
		t.Errorf("Reference: ожидалось %q, получено %q", meta.Reference, readMeta.Reference)
	}
	if readMeta.Artifact != meta.Artifact {
		t.Errorf("Artifact: ожидалось %q, получено %q", meta.Artifact, readMeta.Artifact)
	}
	if !readMeta.GeneratedAt.Equal(meta.GeneratedAt) {
		t.Errorf("GeneratedAt: ожидалось %v, получено %v", meta.GeneratedAt, readMeta.GeneratedAt)
	}
	if readMeta.NonCompliantCount != meta.NonCompliantCount {
		t.Errorf("NonCompliantCount: ожидалось %d, получено %d", meta.NonCompliantCount, readMeta.NonCompliantCount)
	}
	if readMeta.OverallStatus != meta.OverallStatus {
		t.Errorf("OverallStatus: ожидалось %q, получено %q", meta.OverallStatus, readMeta.OverallStatus)
	}
	if readMeta.PageCount != meta.PageCount {
		t.Errorf("PageCount: ожидалось %d, получено %d", meta.PageCount, readMeta.PageCount)
	}

	// temp файл не должен остаться
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("временный файл не должен существовать")
	}
}

// TestWrite_TooLarge проверяет ограничение размера attr.json.
func TestWrite_TooLarge(t *testing.T) {
	meta := testMetadata()
	meta.PropertyAddress = strings.Repeat("x", maxAttrFileSize)

	path := AttrFilePath(filepath.Join(t.TempDir(), "big.pdf"))
	if err := Write(path, meta); err == nil {
		t.Fatal("ожидалась ошибка превышения размера")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("файл не должен быть создан")
	}
}

// TestRead_InvalidJSON проверяет ошибку на повреждённом файле.
func TestRead_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken"+AttrSuffix)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("ошибка подготовки: %v", err)
	}

	if _, err := Read(path); err == nil {
		t.Fatal("ожидалась ошибка десериализации")
	}
}

// TestDelete_Missing проверяет, что удаление отсутствующего файла — не ошибка.
func TestDelete_Missing(t *testing.T) {
	if err := Delete(filepath.Join(t.TempDir(), "missing"+AttrSuffix)); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
}

func TestIsAttrFile(t *testing.T) {
	if !IsAttrFile("a.pdf" + AttrSuffix) {
		t.Error("ожидалось true для attr.json")
	}
	if IsAttrFile("a.pdf") {
		t.Error("ожидалось false для pdf")
	}
}
