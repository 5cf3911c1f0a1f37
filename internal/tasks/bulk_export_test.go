package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/shared"
	tu "github.com/desertthunder/nextmusic/internal/testing"
)

func libraryPlaylists() []models.Playlist {
	return []models.Playlist{
		{Name: "Liked Songs", Tracks: tu.Tracks(2)},
		{Name: "Rock Classics", Tracks: tu.Tracks(3)},
		{Name: "Coding Focus", Tracks: []models.Track{}},
	}
}

func TestExport(t *testing.T) {
	t.Run("writes every playlist and a manifest", func(t *testing.T) {
		e := NewPlaylistEngine(nil, nil)
		dir := filepath.Join(t.TempDir(), "out")
		progress := make(chan ProgressUpdate, 50)

		result, err := e.Export(context.Background(), progress, libraryPlaylists(), ExportOpts{Format: "csv", OutputDir: dir, NumWorkers: 2})
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		if result.TotalPlaylists != 3 || result.SuccessfulExports != 3 || result.FailedExports != 0 {
			t.Errorf("unexpected counts %+v", result)
		}
		wantNames := []string{"Liked Songs", "Rock Classics", "Coding Focus"}
		for i, r := range result.Results {
			if r.Name != wantNames[i] {
				t.Errorf("result %d: expected %s, got %s", i, wantNames[i], r.Name)
			}
			if len(r.Files) != 2 {
				t.Errorf("%s: expected tracks and metadata files, got %v", r.Name, r.Files)
			}
			for _, f := range r.Files {
				tu.AssertFileExists(t, f)
			}
		}
		if result.Results[1].Tracks != 3 {
			t.Errorf("expected 3 tracks for Rock Classics, got %d", result.Results[1].Tracks)
		}

		if result.ManifestPath != filepath.Join(dir, "export_manifest.json") {
			t.Errorf("unexpected manifest path %s", result.ManifestPath)
		}
		var manifest ExportResult
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}
		if manifest.Format != "csv" || manifest.SuccessfulExports != 3 || len(manifest.Results) != 3 {
			t.Errorf("unexpected manifest %+v", manifest)
		}

		var completed, manifestSeen int
		for _, u := range drain(progress) {
			switch {
			case u.Phase == ExportPlaylist && strings.Contains(u.Message, "✓"):
				completed++
			case u.Phase == WriteManifest:
				manifestSeen++
			}
		}
		if completed != 3 || manifestSeen != 1 {
			t.Errorf("expected 3 completions and 1 manifest update, got %d and %d", completed, manifestSeen)
		}
	})

	t.Run("defaults to json", func(t *testing.T) {
		e := NewPlaylistEngine(nil, nil)
		dir := t.TempDir()

		result, err := e.Export(context.Background(), nil, libraryPlaylists()[:1], ExportOpts{OutputDir: dir})
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		if result.Format != "json" {
			t.Errorf("expected json, got %s", result.Format)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "liked-songs.json"))
	})

	t.Run("unknown format", func(t *testing.T) {
		e := NewPlaylistEngine(nil, nil)
		_, err := e.Export(context.Background(), nil, libraryPlaylists(), ExportOpts{Format: "xml", OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("partial failure", func(t *testing.T) {
		e := NewPlaylistEngine(nil, nil)
		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "rock-classics.json"), 0755); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		result, err := e.Export(context.Background(), nil, libraryPlaylists(), ExportOpts{Format: "json", OutputDir: dir, NumWorkers: 20})
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		if result.SuccessfulExports != 2 || result.FailedExports != 1 {
			t.Errorf("expected 2 ok and 1 failed, got %+v", result)
		}
		failed := result.Results[1]
		if failed.Success || failed.Error == "" {
			t.Errorf("expected Rock Classics to fail, got %+v", failed)
		}
	})

	t.Run("output directory cannot be created", func(t *testing.T) {
		e := NewPlaylistEngine(nil, nil)
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if _, err := e.Export(context.Background(), nil, libraryPlaylists(), ExportOpts{OutputDir: filepath.Join(file, "sub")}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		e := NewPlaylistEngine(nil, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		dir := t.TempDir()
		result, err := e.Export(ctx, nil, libraryPlaylists(), ExportOpts{OutputDir: dir})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.ManifestPath != "" {
			t.Errorf("manifest must not be written after cancellation, got %+v", result)
		}
	})
}
