package golang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/tools/imports"

	smcore "github.com/aws/sagemaker-core-sub001"
)

// GoGenerator renders a resource plan to Go source files: one file per
// resource, shared data structs, the constructor registry, the configuration
// schema, the client, and the embedded service description.
type GoGenerator struct {
	// Logger, if set, receives per-file progress at debug level.
	Logger *slog.Logger
}

// Name implements Generator.
func (g *GoGenerator) Name() string { return "go" }

// Generate implements Generator.
func (g *GoGenerator) Generate(ctx context.Context, in *Input, opts GenerateOptions) (*Result, error) {
	if in == nil || in.Plan == nil || in.Service == nil {
		return nil, errors.New("golang: plan and service are required")
	}
	if opts.Sink == nil {
		return nil, errors.New("golang: output sink is required")
	}
	if len(in.DescriptionJSON) == 0 {
		// The generated client embeds the description; without it the output
		// would not compile.
		return nil, errors.New("golang: service description document is required")
	}
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := NewEmitter(in, opts.Config)
	res := &Result{}

	write := func(path string, content []byte, format bool) error {
		if format && !e.cfg.SkipFormat {
			formatted, err := imports.Process(path, content, nil)
			if err != nil {
				e.warn("format_failed", fmt.Sprintf("%s: %v", path, err), "")
				logger.Warn("emitted file failed to format, writing raw",
					slog.String("path", path),
					slog.String("error", err.Error()))
			} else {
				content = formatted
			}
		}
		if err := opts.Sink.WriteFile(ctx, path, content); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("wrote generated file",
			slog.String("path", path),
			slog.Int("bytes", len(content)))
		res.Files = append(res.Files, OutputFile{Path: path, Size: int64(len(content))})
		return nil
	}

	types, err := e.EmitTypesFile()
	if err != nil {
		return nil, fmt.Errorf("emit types: %w", err)
	}
	if err := write("types.go", types, true); err != nil {
		return nil, err
	}

	registry, err := e.EmitRegistryFile()
	if err != nil {
		return nil, fmt.Errorf("emit registry: %w", err)
	}
	if err := write("registry.go", registry, true); err != nil {
		return nil, err
	}

	configSchema, err := e.EmitConfigSchemaFile()
	if err != nil {
		return nil, fmt.Errorf("emit config schema: %w", err)
	}
	if err := write("config_schema.go", configSchema, true); err != nil {
		return nil, err
	}

	if err := write("client.go", e.EmitClientFile(), true); err != nil {
		return nil, err
	}

	for i := range in.Plan.Resources {
		r := &in.Plan.Resources[i]
		src, err := e.EmitResourceFile(r)
		if err != nil {
			return nil, fmt.Errorf("emit resource %s: %w", r.Name, err)
		}
		if err := write(smcore.PascalToSnake(r.Name)+".go", src, true); err != nil {
			return nil, err
		}
		res.ResourcesGenerated++
	}

	if err := write("service_description.json", in.DescriptionJSON, false); err != nil {
		return nil, err
	}

	res.Warnings = append(res.Warnings, in.Plan.Warnings...)
	res.Warnings = append(res.Warnings, e.Warnings()...)
	return res, nil
}
