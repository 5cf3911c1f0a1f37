package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/nextmusic/internal/formatter"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/shared"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
	manifestName   = "export_manifest.json"
)

// ExportOpts contains configuration for playlist exports.
type ExportOpts struct {
	Format     string // Export format: json, csv, markdown, txt
	OutputDir  string // Base output directory (default: nextmusic_export_{epoch})
	NumWorkers int    // Concurrent workers (default: 4, max: 10)
}

// PlaylistExportResult is the outcome for one playlist.
type PlaylistExportResult struct {
	Name    string   `json:"name"`
	Tracks  int      `json:"tracks"`
	Files   []string `json:"files"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
}

// ExportResult summarises an export run. It is also the manifest written next to the files.
type ExportResult struct {
	Format            string                 `json:"format"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

type exportJob struct {
	index    int
	playlist models.Playlist
}

// Export writes playlists to opts.OutputDir concurrently and records a manifest.
//
// Individual failures are reported in the result and do not stop the run. Results keep the
// order of playlists.
func (e *PlaylistEngine) Export(ctx context.Context, progress chan<- ProgressUpdate, playlists []models.Playlist, opts ExportOpts) (*ExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if !formatter.ValidFormat(opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("nextmusic_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(playlists)
	result := &ExportResult{
		Format:          opts.Format,
		TotalPlaylists:  total,
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, total),
	}

	jobs := make(chan exportJob, total)
	done := make(chan exportJob, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				sendProgress(progress, exportingPlaylistUpdate(job.index+1, total, job.playlist.Name))
				result.Results[job.index] = exportOne(job.playlist, opts)
				done <- job
			}
		}()
	}

	for i, pl := range playlists {
		jobs <- exportJob{index: i, playlist: pl}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for job := range done {
		completed++
		res := result.Results[job.index]
		if res.Success {
			result.SuccessfulExports++
			sendProgress(progress, exportCompletedUpdate(completed, total, res.Name, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(progress, exportFailedUpdate(completed, total, res.Name, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(progress, manifestUpdate(manifestPath))

	e.logger.Info("export finished", "dir", opts.OutputDir, "ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, nil
}

func exportOne(pl models.Playlist, opts ExportOpts) PlaylistExportResult {
	res := PlaylistExportResult{Name: pl.Name, Tracks: len(pl.Tracks), Files: []string{}}
	files, err := formatter.Write(pl, opts.Format, opts.OutputDir)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Files = files
	res.Success = true
	return res
}
