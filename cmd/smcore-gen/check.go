package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/sagemaker-core-sub001/schema"
	"github.com/aws/sagemaker-core-sub001/smgen/golang"
	"github.com/aws/sagemaker-core-sub001/smgen/plan"
	"github.com/aws/sagemaker-core-sub001/smgen/sink"
)

type CheckCmd struct {
	Description string `arg:"" help:"Path to the service description JSON." type:"existingfile"`

	ServiceID string `help:"Expected serviceId of the description." default:"SageMaker" name:"service-id"`
}

// Run extracts the plan, prints it, and dry-runs the generator into memory so
// emission errors surface without touching the filesystem.
func (c *CheckCmd) Run() error {
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
			fmt.Printf("invalid: %s\n", e)
		}
		return fmt.Errorf("resource plan has %d problems", len(errs))
	}

	for i := range p.Resources {
		r := &p.Resources[i]
		fmt.Printf("%s (identifier %s)\n", r.Name, r.IdentifierMember)
		for _, m := range r.ClassMethods {
			fmt.Printf("  %-14s %s\n", m.Name, m.Operation)
		}
		for _, m := range r.InstanceMethods {
			fmt.Printf("  %-14s %s\n", m.Name, m.Operation)
		}
		for _, m := range r.AdditionalMethods {
			fmt.Printf("  %-14s %s\n", m.Name, m.Operation)
		}
	}

	g := &golang.GoGenerator{Logger: slog.Default()}
	res, err := g.Generate(context.Background(),
		&golang.Input{Plan: p, Service: svc, DescriptionJSON: data},
		golang.GenerateOptions{Sink: sink.NewMemorySink()})
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s: %s (%s)\n", w.Resource, w.Message, w.Code)
	}
	fmt.Printf("%d resources, %d files, %d warnings\n",
		res.ResourcesGenerated, len(res.Files), len(res.Warnings))
	return nil
}
