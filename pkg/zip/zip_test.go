package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"
)

func TestArchiveAssets(t *testing.T) {
	assets := []Asset{
		{Filename: "podcast.wav", MIME: "audio/wav", Data: []byte("RIFF....WAVE")},
		{Filename: "script.json", MIME: "application/json", Data: []byte(`[{"speaker":"Alex","text":"hi"}]`)},
	}
	data, err := ArchiveAssets(assets, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("ArchiveAssets: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("archive has %d files", len(zr.File))
	}
	if zr.File[0].Method != zip.Store || zr.File[1].Method != zip.Deflate {
		t.Fatalf("methods = %d, %d", zr.File[0].Method, zr.File[1].Method)
	}
	rc, err := zr.File[1].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != string(assets[1].Data) {
		t.Fatalf("entry = %q", body)
	}
}
