package server

import (
	"archive/tar"
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blakesmith/ar"
)

func buildTestDebBytes(t *testing.T, name, version, arch string) []byte {
	t.Helper()
	control := []byte("Package: " + name + "\nVersion: " + version + "\nArchitecture: " + arch + "\nMaintainer: Jane\nDescription: a test package\n")

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	tw.WriteHeader(&tar.Header{Name: "./control", Size: int64(len(control)), Mode: 0644})
	tw.Write(control)
	tw.Close()

	var arBuf bytes.Buffer
	aw := ar.NewWriter(&arBuf)
	aw.WriteGlobalHeader()
	aw.WriteHeader(&ar.Header{Name: "control.tar", Size: int64(tarBuf.Len()), Mode: 0644, ModTime: time.Now()})
	aw.Write(tarBuf.Bytes())
	return arBuf.Bytes()
}

func TestUploadHandlerStoresPackage(t *testing.T) {
	debDir := t.TempDir()
	cfg := ServerConfig{DebDirectory: debDir}
	handler := UploadHandler(cfg)

	body := buildTestDebBytes(t, "hello", "1.0", "amd64")
	req := httptest.NewRequest("POST", "/upload", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	want := filepath.Join(debDir, "amd64", "hello_1.0_amd64.deb")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected file at %s: %v", want, err)
	}
}

func TestUploadHandlerRejectsDuplicateByDefault(t *testing.T) {
	debDir := t.TempDir()
	cfg := ServerConfig{DebDirectory: debDir}
	handler := UploadHandler(cfg)
	body := buildTestDebBytes(t, "hello", "1.0", "amd64")

	for _, expectOK := range []bool{true, false} {
		req := httptest.NewRequest("POST", "/upload", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if expectOK && rec.Code != 200 {
			t.Fatalf("first upload: status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if !expectOK && rec.Code == 200 {
			t.Fatalf("second upload should have failed, got 200")
		}
	}
}

func TestUploadHandlerIgnoreExists(t *testing.T) {
	debDir := t.TempDir()
	cfg := ServerConfig{DebDirectory: debDir}
	handler := UploadHandler(cfg)
	body := buildTestDebBytes(t, "hello", "1.0", "amd64")

	req1 := httptest.NewRequest("POST", "/upload", bytes.NewReader(body))
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	if rec1.Code != 200 {
		t.Fatalf("first upload failed: %d", rec1.Code)
	}

	req2 := httptest.NewRequest("POST", "/upload?ignore_exists=true", bytes.NewReader(body))
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != 200 {
		t.Fatalf("ignore_exists upload should succeed, got %d: %s", rec2.Code, rec2.Body.String())
	}
}

func TestUploadHandlerRejectsMalformedArchive(t *testing.T) {
	debDir := t.TempDir()
	cfg := ServerConfig{DebDirectory: debDir}
	handler := UploadHandler(cfg)

	req := httptest.NewRequest("POST", "/upload", bytes.NewReader([]byte("not a deb archive")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
