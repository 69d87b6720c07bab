// Package downloader implements the Downloader (spec.md §4.7): it fetches
// model weight files over HTTP into the configured model home, guarding
// against duplicate concurrent downloads of the same file and writing
// atomically so a crash mid-download never leaves a file that looks
// complete.
package downloader

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/moby/sys/atomicwriter"

	"github.com/ByteBell/pyano/internal/ggufmeta"
	"github.com/ByteBell/pyano/internal/logging"
	"github.com/ByteBell/pyano/internal/pyanoerr"
)

// ProgressReporter receives periodic byte-count updates during a download.
// Presentation (progress bars, ETA) is out of scope; the default
// implementation just logs at a throttled interval (spec.md Non-goals).
type ProgressReporter interface {
	Report(downloaded, total int64)
}

// logProgress is the default ProgressReporter: a rate-limited info log.
type logProgress struct {
	url  string
	last time.Time
}

func (p *logProgress) Report(downloaded, total int64) {
	now := time.Now()
	if now.Sub(p.last) < 2*time.Second && (total == 0 || downloaded < total) {
		return
	}
	p.last = now
	if total > 0 {
		logging.WithField("downloader", "url", p.url).
			Infof("%s / %s (%.1f%%)", humanize.IBytes(uint64(downloaded)), humanize.IBytes(uint64(total)),
				float64(downloaded)/float64(total)*100)
	} else {
		logging.WithField("downloader", "url", p.url).Infof("%s downloaded", humanize.IBytes(uint64(downloaded)))
	}
}

// Download fetches url into saveDir/<last path segment>, creating saveDir
// if it doesn't exist. A file lock on saveDir/.<file>.download.lock
// prevents two concurrent callers from downloading the same weights file
// at once; the second caller blocks until the first finishes, then finds
// the file already present and returns its path without re-fetching.
func Download(ctx context.Context, url, saveDir string) (string, error) {
	return DownloadWithProgress(ctx, url, saveDir, nil)
}

// DownloadWithProgress is Download with an injectable ProgressReporter; nil
// uses the default rate-limited logger.
func DownloadWithProgress(ctx context.Context, url, saveDir string, progress ProgressReporter) (string, error) {
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return "", pyanoerr.NewConfigError("creating save dir %q: %v", saveDir, err)
	}

	filename := path.Base(url)
	dest := filepath.Join(saveDir, filename)

	lockPath := filepath.Join(saveDir, "."+filename+".download.lock")
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return "", pyanoerr.NewConfigError("locking %q: %v", lockPath, err)
	}
	defer fl.Unlock()

	if _, err := os.Stat(dest); err == nil {
		logging.WithField("downloader", "path", dest).Debug("weights already present, skipping download")
		return dest, nil
	}

	log := logging.WithField("downloader", "url", url)
	log.Info("downloading weights")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", pyanoerr.NewConfigError("building request for %q: %v", url, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", pyanoerr.NewConfigError("requesting %q: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &pyanoerr.DownloadError{URL: url, Status: resp.StatusCode}
	}

	if progress == nil {
		progress = &logProgress{url: url}
	}
	reader := &countingReader{r: resp.Body, total: resp.ContentLength, progress: progress}

	// atomicwriter streams to a temp file beside dest and renames into
	// place on Close, so a reader never observes a partial file at dest
	// (spec.md §4.7 leaves partial-file cleanup to the caller on failure;
	// the rename simply never happens if writing fails).
	w, err := atomicwriter.New(dest, 0o644)
	if err != nil {
		return "", pyanoerr.NewConfigError("opening atomic writer for %q: %v", dest, err)
	}
	if _, err := io.Copy(w, reader); err != nil {
		w.Close()
		return "", pyanoerr.NewConfigError("writing %q: %v", dest, err)
	}
	if err := w.Close(); err != nil {
		return "", pyanoerr.NewConfigError("finalizing %q: %v", dest, err)
	}

	log.Info("download complete")

	if info, err := ggufmeta.Describe(dest); err == nil {
		log.WithField("architecture", info.Architecture).Debug("parsed weights metadata")
	}

	return dest, nil
}

type countingReader struct {
	r        io.Reader
	total    int64
	read     int64
	progress ProgressReporter
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.progress != nil {
		c.progress.Report(c.read, c.total)
	}
	return n, err
}

