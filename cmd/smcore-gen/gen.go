package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aws/sagemaker-core-sub001/schema"
	"github.com/aws/sagemaker-core-sub001/smgen/golang"
	"github.com/aws/sagemaker-core-sub001/smgen/plan"
	"github.com/aws/sagemaker-core-sub001/smgen/sink"
)

// debounceInterval coalesces bursts of file events (editors write, rename,
// and chmod in quick succession) into one regeneration.
const debounceInterval = 500 * time.Millisecond

type GenCmd struct {
	Description string `arg:"" help:"Path to the service description JSON." type:"existingfile"`
	Out         string `arg:"" help:"Output directory for generated files."`

	Package    string `help:"Package name of the generated files." default:"resources"`
	ServiceID  string `help:"Expected serviceId of the description." default:"SageMaker" name:"service-id"`
	SkipFormat bool   `help:"Write files without running the formatter."`
	Watch      bool   `help:"Watch the description and regenerate on change." short:"w"`
}

func (c *GenCmd) Run() error {
	if err := c.generate(context.Background()); err != nil {
		if !c.Watch {
			return err
		}
		// In watch mode a broken description is a state to recover from, not
		// a reason to exit.
		slog.Error("generation failed", slog.String("error", err.Error()))
	}
	if !c.Watch {
		return nil
	}
	return c.watch()
}

func (c *GenCmd) generate(ctx context.Context) error {
	data, err := os.ReadFile(c.Description)
	if err != nil {
		return fmt.Errorf("read service description: %w", err)
	}
	svc, err := schema.Load(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("load service description: %w", err)
	}
	p, err := plan.Extract(svc, plan.Options{ServiceID: c.ServiceID, Logger: slog.Default()})
	if err != nil {
		return err
	}
	if errs := p.Validate(); len(errs) > 0 {
		for _, e := range errs {
			slog.Error("invalid resource plan", slog.String("error", e.Error()))
		}
		return fmt.Errorf("resource plan has %d problems", len(errs))
	}

	g := &golang.GoGenerator{Logger: slog.Default()}
	res, err := g.Generate(ctx,
		&golang.Input{Plan: p, Service: svc, DescriptionJSON: data},
		golang.GenerateOptions{
			Sink:   sink.NewFilesystemSink(c.Out),
			Config: golang.Config{PackageName: c.Package, SkipFormat: c.SkipFormat},
		})
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		slog.Warn(w.Message, slog.String("code", w.Code), slog.String("resource", w.Resource))
	}
	fmt.Fprintf(os.Stderr, "smcore-gen: %d resources, %d files written to %s\n",
		res.ResourcesGenerated, len(res.Files), c.Out)
	return nil
}

// watch regenerates whenever the description file changes. The parent
// directory is watched rather than the file itself: editors that replace the
// file on save would otherwise detach the watch.
func (c *GenCmd) watch() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(c.Description)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Base(c.Description)
	slog.Info("watching for changes", slog.String("path", c.Description))

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceInterval, func() {
				slog.Info("description changed, regenerating")
				if err := c.generate(ctx); err != nil {
					slog.Error("generation failed", slog.String("error", err.Error()))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch error", slog.String("error", err.Error()))
		}
	}
}
