// Package golang renders an extracted resource plan to Go source: one typed
// struct per resource with its lifecycle methods, data structs for the shapes
// they reference, a constructor registry, and the configuration schema for
// runtime default resolution.
package golang

import (
	"context"

	"github.com/aws/sagemaker-core-sub001/schema"
	"github.com/aws/sagemaker-core-sub001/smgen/ir"
	"github.com/aws/sagemaker-core-sub001/smgen/sink"
)

// Generator transforms a resource plan into target source code.
type Generator interface {
	Name() string
	Generate(ctx context.Context, in *Input, opts GenerateOptions) (*Result, error)
}

// Input bundles everything a generation pass consumes.
type Input struct {
	// Plan is the extracted resource plan.
	Plan *ir.Plan

	// Service is the loaded service description backing the plan.
	Service *schema.Service

	// DescriptionJSON, when set, is the raw service description document. It
	// is written alongside the generated code and embedded so the runtime
	// codec interprets payloads against the same shapes the code was
	// generated from.
	DescriptionJSON []byte
}

// GenerateOptions configures a generation pass.
type GenerateOptions struct {
	// Sink receives the generated files.
	Sink sink.OutputSink

	// Config holds the emitter configuration.
	Config Config
}

// Config controls how the Go sources are emitted.
type Config struct {
	// PackageName is the package clause of the generated files.
	// Default "resources".
	PackageName string

	// RuntimeImport is the import path of the runtime package the generated
	// code calls into. Default "github.com/aws/sagemaker-core-sub001".
	RuntimeImport string

	// Format runs the goimports processor over each emitted file. Files that
	// fail to format are written raw with a warning instead of aborting the
	// pass. Default true (set SkipFormat to disable).
	SkipFormat bool

	// ConfigurableSubstrings selects which attributes enter the generated
	// configuration schema, matched as substrings of the snake_case
	// attribute name. Defaults to role_arn, kms, security_group, subnet,
	// tags.
	ConfigurableSubstrings []string
}

// Result is the outcome of a generation pass.
type Result struct {
	// Files lists everything written to the sink.
	Files []OutputFile

	// ResourcesGenerated counts the resource classes emitted.
	ResourcesGenerated int

	// Warnings are the non-fatal issues hit while emitting.
	Warnings []ir.Warning
}

// OutputFile describes one generated file.
type OutputFile struct {
	Path string
	Size int64
}

func (c Config) withDefaults() Config {
	if c.PackageName == "" {
		c.PackageName = "resources"
	}
	if c.RuntimeImport == "" {
		c.RuntimeImport = "github.com/aws/sagemaker-core-sub001"
	}
	if len(c.ConfigurableSubstrings) == 0 {
		c.ConfigurableSubstrings = []string{"role_arn", "kms", "security_group", "subnet", "tags"}
	}
	return c
}
