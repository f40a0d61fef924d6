// Package print provides mutators that log every resource they see without
// changing it. Listing them in `experimental.functions.mutators` shows what
// the earlier mutators produced.
package print

import (
	"context"
	"log/slog"
	"sort"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/jobs"
	"github.com/specialistvlad/bundlefn/pipelines"
	"github.com/specialistvlad/bundlefn/registry"
	"github.com/specialistvlad/bundlefn/resources"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (m Module) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

// PrintJob logs a job.
func (m Module) PrintJob(b core.Bundle, job *jobs.Job) (*jobs.Job, error) {
	m.logger().LogAttrs(context.Background(), slog.LevelInfo, "Job",
		slog.String("target", b.Target()),
		slog.String("name", job.Name.OrElse("")),
		slog.Int("tasks", len(job.Tasks)),
		slog.Any("tags", sortedTags(job.Tags)),
	)
	return job, nil
}

// PrintPipeline logs a pipeline.
func (m Module) PrintPipeline(b core.Bundle, pipeline *pipelines.Pipeline) (*pipelines.Pipeline, error) {
	m.logger().LogAttrs(context.Background(), slog.LevelInfo, "Pipeline",
		slog.String("target", b.Target()),
		slog.String("name", pipeline.Name.OrElse("")),
		slog.Any("tags", sortedTags(pipeline.Tags)),
	)
	return pipeline, nil
}

// sortedTags renders tags as "key=value" in key order.
func sortedTags(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+tags[k])
	}
	return out
}

// Register registers the mutators as `print:jobs` and `print:pipelines`.
func (m Module) Register(r *registry.Registry) {
	r.Register("print:jobs", resources.MutatorWithBundle(m.PrintJob, resources.WithMutatorName("print_jobs")))
	r.Register("print:pipelines", resources.MutatorWithBundle(m.PrintPipeline, resources.WithMutatorName("print_pipelines")))
}
