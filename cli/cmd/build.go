package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/snapclone/adapter"
	"github.com/pithecene-io/snapclone/adapter/redis"
	"github.com/pithecene-io/snapclone/adapter/webhook"
	"github.com/pithecene-io/snapclone/capture/browser"
	"github.com/pithecene-io/snapclone/capture/desktop"
	"github.com/pithecene-io/snapclone/cli/reader"
	snaplode "github.com/pithecene-io/snapclone/lode"
	"github.com/pithecene-io/snapclone/metrics"
)

// buildProvider creates the capture provider named by s.provider.
// The returned closer releases it; provider is nil for "none".
func buildProvider(s *settings) (provider any, closer io.Closer, err error) {
	switch s.provider {
	case "browser":
		p, err := browser.New(browser.Config{
			RemoteURL:  s.remoteURL,
			Executable: s.executable,
			Headless:   s.headless,
			Stealth:    s.stealth,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case "desktop":
		return desktop.New(s.desktopURL, nil), nopCloser{}, nil
	default:
		return nil, nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// archiveConfig derives the partition keys for one run.
func archiveConfig(s *settings, runID, targetURL string, start time.Time) snaplode.Config {
	return snaplode.Config{
		Dataset: s.archive.dataset,
		Source:  snaplode.DeriveSource(targetURL),
		Day:     snaplode.DeriveDay(start),
		RunID:   runID,
	}
}

func (s *settings) s3Config() snaplode.S3Config {
	bucket, prefix := snaplode.ParseS3Path(s.archive.path)
	return snaplode.S3Config{
		Bucket:       bucket,
		Prefix:       prefix,
		Region:       s.archive.region,
		Endpoint:     s.archive.endpoint,
		UsePathStyle: s.archive.pathStyle,
	}
}

// buildArchive opens the run archive. Returns a nil archive when no
// archive path is configured. archivePath is the location of the run's
// files for reports and notifications.
func buildArchive(ctx context.Context, s *settings, cfg snaplode.Config, collector *metrics.Collector) (archive snaplode.Archive, archivePath string, err error) {
	if s.archive.path == "" {
		return nil, "", nil
	}

	var client *snaplode.LodeClient
	switch s.archive.backend {
	case "s3":
		s3cfg := s.s3Config()
		client, err = snaplode.NewLodeS3Client(ctx, cfg, s3cfg)
		if err == nil {
			archivePath = "s3://" + path.Join(s3cfg.Bucket, s3cfg.Prefix, client.FilePath("")) + "/"
		}
	default:
		client, err = snaplode.NewLodeClient(cfg, s.archive.path)
		if err == nil {
			archivePath = filepath.Join(s.archive.path, filepath.FromSlash(client.FilePath(""))) + string(filepath.Separator)
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("open run archive: %w", err)
	}
	return snaplode.NewInstrumentedArchive(client, collector), archivePath, nil
}

// datasetOpener returns the reader's archive opener, nil when no archive
// path is configured.
func datasetOpener(s *settings) reader.DatasetOpener {
	if s.archive.path == "" {
		return nil
	}
	return func(ctx context.Context) (lode.Dataset, error) {
		if s.archive.backend == "s3" {
			return snaplode.NewReadDatasetS3(ctx, s.archive.dataset, s.s3Config())
		}
		return snaplode.NewReadDatasetFS(s.archive.dataset, s.archive.path)
	}
}

// buildAdapter creates the completion notifier. Returns nil when none is
// configured.
func buildAdapter(s *settings) (adapter.Adapter, error) {
	retries := -1
	if s.adapter.retries != nil {
		retries = *s.adapter.retries
	}

	switch s.adapter.kind {
	case "webhook":
		if retries < 0 {
			retries = webhook.DefaultRetries
		}
		a, err := webhook.New(webhook.Config{
			URL:     s.adapter.url,
			Headers: s.adapter.headers,
			Timeout: s.adapter.timeout,
			Retries: retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "redis":
		if retries < 0 {
			retries = redis.DefaultRetries
		}
		a, err := redis.New(redis.Config{
			URL:     s.adapter.url,
			Channel: s.adapter.channel,
			Timeout: s.adapter.timeout,
			Retries: retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "":
		return nil, nil
	default:
		return nil, errors.New("unknown adapter: " + s.adapter.kind)
	}
}
