package print

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/jobs"
	"github.com/specialistvlad/bundlefn/pipelines"
	"github.com/specialistvlad/bundlefn/registry"
	"github.com/specialistvlad/bundlefn/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_PrintsWithoutChanging(t *testing.T) {
	// --- Arrange ---
	buf := &bytes.Buffer{}
	m := Module{Logger: slog.New(slog.NewTextHandler(buf, nil))}
	reg := registry.New()
	reg.Use(m)

	res := resources.New()
	job := &jobs.Job{Name: core.ValueOf("nightly"), Tags: map[string]string{"team": "data", "env": "dev"}}
	res.AddJob("nightly", job)
	res.AddPipeline("etl", &pipelines.Pipeline{Name: core.ValueOf("etl")})

	var mutators []resources.ResourceMutator
	for _, ref := range []string{"print:jobs", "print:pipelines"} {
		value, err := reg.Lookup(ref)
		require.NoError(t, err)
		mutators = append(mutators, value.(resources.ResourceMutator))
	}

	// --- Act ---
	diags := resources.ApplyMutators(context.Background(), core.NewBundle("dev", nil), res, mutators)

	// --- Assert ---
	assert.Zero(t, diags.Len())
	assert.Same(t, job, res.Jobs()["nightly"])
	out := buf.String()
	assert.Contains(t, out, "msg=Job target=dev name=nightly tasks=0 tags=\"[env=dev team=data]\"")
	assert.Contains(t, out, "msg=Pipeline target=dev name=etl")
}

func TestSortedTags(t *testing.T) {
	assert.Equal(t, []string{"a=1", "b=2"}, sortedTags(map[string]string{"b": "2", "a": "1"}))
	assert.Empty(t, sortedTags(nil))
}
