package main

import (
	"os"
	"path/filepath"
	"testing"
)

// TestCommands проверяет состав подкоманд.
func TestCommands(t *testing.T) {
	want := map[string]bool{"serve": false, "render": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("подкоманда %q не зарегистрирована", name)
		}
	}

	if f := renderCmd.Flags().Lookup("input"); f == nil {
		t.Error("флаг --input не зарегистрирован")
	}
}

// TestGetDiskUsage проверяет согласованность значений statfs.
func TestGetDiskUsage(t *testing.T) {
	total, used, available, err := getDiskUsage(t.TempDir())
	if err != nil {
		t.Fatalf("getDiskUsage: %v", err)
	}
	if total <= 0 {
		t.Errorf("total = %d, ожидалось > 0", total)
	}
	if used+available != total {
		t.Errorf("used + available = %d, ожидалось %d", used+available, total)
	}
}

// TestGetDiskUsage_Missing проверяет ошибку для несуществующего пути.
func TestGetDiskUsage_Missing(t *testing.T) {
	if _, _, _, err := getDiskUsage(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ожидалась ошибка для несуществующего пути")
	}
}

// TestCopyArtifact проверяет копирование PDF в выходную директорию.
func TestCopyArtifact(t *testing.T) {
	src := filepath.Join(t.TempDir(), "rms_report_x.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.7"), 0o600); err != nil {
		t.Fatal(err)
	}

	dst, err := copyArtifact(src, filepath.Join(t.TempDir(), "out", "nested"))
	if err != nil {
		t.Fatalf("copyArtifact: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.7" {
		t.Errorf("содержимое = %q", data)
	}
	if filepath.Base(dst) != "rms_report_x.pdf" {
		t.Errorf("имя = %q", filepath.Base(dst))
	}
}
