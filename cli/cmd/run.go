package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/snapclone/adapter"
	"github.com/pithecene-io/snapclone/artifact"
	"github.com/pithecene-io/snapclone/capture"
	"github.com/pithecene-io/snapclone/cli/config"
	"github.com/pithecene-io/snapclone/generate"
	snaplode "github.com/pithecene-io/snapclone/lode"
	"github.com/pithecene-io/snapclone/log"
	"github.com/pithecene-io/snapclone/metrics"
	"github.com/pithecene-io/snapclone/runtime"
	"github.com/pithecene-io/snapclone/store"
	"github.com/pithecene-io/snapclone/types"
)

// phases selects what an executing command runs.
type phases struct {
	capture  bool
	generate bool
}

// RunCommand returns the run command: capture, then generate from the
// fresh snapshot.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Capture a UI snapshot and generate a component from it",
		Flags:  concatFlags(runFlags(), captureFlags(), generateFlags()),
		Action: executeAction(phases{capture: true, generate: true}),
	}
}

// CaptureCommand returns the capture command.
func CaptureCommand() *cli.Command {
	return &cli.Command{
		Name:   "capture",
		Usage:  "Capture a UI snapshot (document and screenshot) into the workspace",
		Flags:  concatFlags(runFlags(), captureFlags()),
		Action: executeAction(phases{capture: true}),
	}
}

// GenerateCommand returns the generate command.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:   "generate",
		Usage:  "Generate a component from the snapshot in the workspace",
		Flags:  concatFlags(runFlags(), generateFlags()),
		Action: executeAction(phases{generate: true}),
	}
}

func concatFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// execution holds what every phase of one command invocation shares.
type execution struct {
	settings    *settings
	store       *store.Store
	runID       string
	apiKey      string
	quiet       bool
	stderr      io.Writer
	collector   *metrics.Collector
	archive     snaplode.Archive
	archivePath string
	adapter     adapter.Adapter
}

func executeAction(ph phases) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := loadSettings(c)
		if err != nil {
			return cli.Exit(fmt.Sprintf("config error: %v", err), runtime.ExitCodeConfigError)
		}

		ex := &execution{
			settings: s,
			store:    store.New(s.workdir),
			runID:    c.String("run-id"),
			quiet:    c.Bool("quiet"),
			stderr:   os.Stderr,
		}
		if ex.runID == "" {
			ex.runID = uuid.NewString()
		}

		// The credential must resolve before any work starts.
		if ph.generate {
			if err := config.LoadDotEnv(s.envFile); err != nil {
				return cli.Exit(err.Error(), runtime.ExitCodeConfigError)
			}
			if ex.apiKey, err = config.ResolveAPIKey(s.apiKeyEnv); err != nil {
				return cli.Exit(err.Error(), runtime.ExitCodeConfigError)
			}
		}

		// Set up context with signal handling
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()

		startTime := time.Now()
		model := s.model
		if model == "" {
			model = generate.DefaultModel
		}
		backend := "none"
		if s.archive.path != "" {
			backend = s.archive.backend
		}
		ex.collector = metrics.NewCollector(s.provider, model, backend, ex.runID)

		targetURL := s.targetURL
		if !ph.capture {
			targetURL = storedTargetURL(ex.store)
		}
		ex.archive, ex.archivePath, err = buildArchive(ctx, s, archiveConfig(s, ex.runID, targetURL, startTime), ex.collector)
		if err != nil {
			return cli.Exit(err.Error(), runtime.ExitCodeConfigError)
		}
		if ex.archive != nil {
			defer func() { _ = ex.archive.Close() }()
		}
		if ex.adapter, err = buildAdapter(s); err != nil {
			return cli.Exit(fmt.Sprintf("config error: %v", err), runtime.ExitCodeConfigError)
		}
		if ex.adapter != nil {
			defer func() { _ = ex.adapter.Close() }()
		}

		var captured, final *runtime.RunResult
		if ph.capture {
			captured, err = ex.runCapture(ctx)
			if err != nil {
				return err
			}
			final = captured
		}
		if ph.generate && (captured == nil || captured.Outcome.Status == types.OutcomeSuccess) {
			meta := &types.RunMeta{RunID: ex.runID, Phase: types.PhaseGenerate, TargetURL: targetURL}
			if final, err = ex.runGenerate(ctx, meta, model); err != nil {
				return err
			}
		}

		report := runtime.BuildRunReport(final, ex.collector.Snapshot(), ex.archivePath)
		if captured != nil && final != captured {
			report.Capture = captured.Capture
		}
		if ex.archive != nil {
			archiveCtx, cancelArchive := context.WithTimeout(context.WithoutCancel(ctx), runtime.DefaultPostRunTimeout)
			if err := runtime.ArchiveRunReport(archiveCtx, ex.archive, report); err != nil {
				fmt.Fprintf(ex.stderr, "Warning: archive run report: %v\n", err)
			}
			cancelArchive()
		}
		if path := c.String("report"); path != "" {
			if err := runtime.WriteRunReport(report, path); err != nil {
				fmt.Fprintf(ex.stderr, "Warning: %v\n", err)
			}
		}

		if !ex.quiet {
			printRunResult(os.Stdout, final, captured, time.Since(startTime))
		}

		return cli.Exit("", runtime.ExitCode(final.Outcome))
	}
}

func (ex *execution) runCapture(ctx context.Context) (*runtime.RunResult, error) {
	s := ex.settings
	meta := &types.RunMeta{RunID: ex.runID, Phase: types.PhaseCapture, TargetURL: s.targetURL}
	logger := log.NewLogger(meta)

	provider, closer, err := buildProvider(s)
	if err != nil {
		// A provider that cannot start degrades to the no-provider path.
		logger.Warn("capture provider unavailable, continuing without automation", map[string]any{
			"provider": s.provider,
			"error":    err.Error(),
		})
		provider, closer = nil, nopCloser{}
	}
	defer func() { _ = closer.Close() }()

	caps := capture.Probe(provider)
	executable := s.executable
	if executable == "" {
		executable = capture.DefaultExecutable()
	}
	opts := []capture.Option{
		capture.WithLauncher(capture.ExecLauncher{Executable: executable}),
		capture.WithLogger(logger),
		capture.WithProgress(ex.progress),
		capture.WithSettleDelay(s.settle),
	}
	ex.progress(fmt.Sprintf("Capture level: %s (%s)", caps.Level(), strings.Join(caps.Names(), ", ")))

	result, err := ex.execute(ctx, &runtime.RunConfig{
		RunMeta:  meta,
		Capturer: capture.NewAcquirer(caps, ex.store, opts...),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	if name, ok := capture.IsCapabilityError(result.CaptureErr); ok {
		logger.Sugar().Warnf("%s failed; check the automation backend is running and the automation library version supports it", name)
	}
	return result, nil
}

func (ex *execution) runGenerate(ctx context.Context, meta *types.RunMeta, model string) (*runtime.RunResult, error) {
	s := ex.settings
	logger := log.NewLogger(meta)

	opts := []generate.Option{generate.WithLogger(logger)}
	if s.timeout > 0 {
		opts = append(opts, generate.WithHTTPClient(&http.Client{Timeout: s.timeout}))
	}
	client := generate.New(generate.Config{
		BaseURL:   s.baseURL,
		APIKey:    ex.apiKey,
		Model:     model,
		MaxTokens: s.maxTokens,
		Retries:   s.retries,
	}, ex.store, artifact.NewWriter(ex.store.ArtifactPath()), opts...)
	ex.progress("Generating component via " + client.Endpoint())

	return ex.execute(ctx, &runtime.RunConfig{
		RunMeta:   meta,
		Generator: client,
		Model:     client.Model(),
		Logger:    logger,
	})
}

// execute fills in the shared parts of cfg and runs one phase.
func (ex *execution) execute(ctx context.Context, cfg *runtime.RunConfig) (*runtime.RunResult, error) {
	cfg.Store = ex.store
	cfg.Archive = ex.archive
	cfg.ArchivePath = ex.archivePath
	cfg.Adapter = ex.adapter
	cfg.Collector = ex.collector

	orchestrator, err := runtime.NewRunOrchestrator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	return orchestrator.Execute(ctx), nil
}

func (ex *execution) progress(msg string) {
	if ex.quiet {
		return
	}
	fmt.Fprintf(ex.stderr, "[*] %s\n", msg)
}

// storedTargetURL returns the URL recorded in the workspace document, or
// "" when there is no readable document.
func storedTargetURL(st *store.Store) string {
	doc, err := st.ReadDocument()
	if err != nil {
		return ""
	}
	return doc.URL
}

func printRunResult(w io.Writer, result, captured *runtime.RunResult, elapsed time.Duration) {
	fmt.Fprintf(w, "\nrun_id=%s, phase=%s, outcome=%s, duration=%s\n",
		result.RunMeta.RunID,
		result.RunMeta.Phase,
		result.Outcome.Status,
		elapsed.Round(time.Millisecond),
	)

	if captured != nil && captured.Capture != nil {
		c := captured.Capture
		fmt.Fprintf(w, "\n=== Capture ===\n")
		fmt.Fprintf(w, "Level:        %s\n", c.Level)
		fmt.Fprintf(w, "Document:     %s (%s, %d elements)\n", c.DocumentPath, c.DocumentSource, c.Elements)
		fmt.Fprintf(w, "Screenshot:   %s (%s, %d bytes)\n", c.ImagePath, c.ImageSource, c.ImageBytes)
		for _, warn := range c.Warnings {
			fmt.Fprintf(w, "Warning:      %s: %s\n", warn.Kind, warn.Message)
		}
	}

	if g := result.Generation; g != nil {
		fmt.Fprintf(w, "\n=== Generation ===\n")
		if g.OK() {
			fmt.Fprintf(w, "Artifact:     %s\n", g.ArtifactPath)
		} else {
			fmt.Fprintf(w, "Error:        %s\n", g.Err.Error())
			if g.Err.BodyExcerpt != "" {
				fmt.Fprintf(w, "Response:     %s\n", g.Err.BodyExcerpt)
			}
		}
		fmt.Fprintf(w, "\n=== Trail ===\n")
		for _, step := range g.Trail {
			fmt.Fprintf(w, "  - %s\n", step)
		}
	}

	fmt.Fprintf(w, "\n=== Run Result ===\n")
	fmt.Fprintf(w, "Run ID:       %s\n", result.RunMeta.RunID)
	fmt.Fprintf(w, "Outcome:      %s\n", result.Outcome.Status)
	fmt.Fprintf(w, "Message:      %s\n", result.Outcome.Message)
	fmt.Fprintf(w, "Duration:     %s\n", result.Duration)
	if len(result.ArchivedFiles) > 0 {
		fmt.Fprintf(w, "Archived:     %s\n", strings.Join(result.ArchivedFiles, ", "))
	}
	if result.Notified {
		fmt.Fprintf(w, "Notified:     yes\n")
	}
}
