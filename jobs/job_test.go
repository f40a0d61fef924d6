package jobs

import (
	"encoding/json"
	"testing"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFromValue(t *testing.T) {
	// --- Arrange ---
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "nightly",
		"max_concurrent_runs": "${var.runs}",
		"tasks": [{
			"task_key": "fan_out",
			"run_if": "ALL_DONE",
			"for_each_task": {
				"inputs": "[1,2,3]",
				"task": {"task_key": "each", "max_retries": 2, "notebook_task": {"notebook_path": "/nb"}}
			}
		}],
		"schedule": {"quartz_cron_expression": "0 0 * * * ?", "timezone_id": "UTC"}
	}`), &raw))

	// --- Act ---
	job, err := FromValue(raw)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "nightly", job.Name.OrElse(""))
	assert.True(t, job.MaxConcurrentRuns.IsVariable())
	require.Len(t, job.Tasks, 1)
	assert.Equal(t, RunIfAllDone, job.Tasks[0].RunIf.OrElse(""))

	nested, ok := job.Tasks[0].ForEachTask.Task.Value()
	require.True(t, ok)
	assert.Equal(t, "each", nested.TaskKey)
	assert.Equal(t, 2, nested.MaxRetries.OrElse(0))
	require.NotNil(t, nested.NotebookTask)
	assert.Equal(t, "/nb", nested.NotebookTask.NotebookPath.OrElse(""))
}

func TestFromValue_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		raw     map[string]any
		wantErr string
	}{
		{
			name:    "unknown field",
			raw:     map[string]any{"name": "a", "owner": "me"},
			wantErr: "unexpected field 'owner' for type jobs.Job",
		},
		{
			name:    "task without key",
			raw:     map[string]any{"tasks": []any{map[string]any{"description": "x"}}},
			wantErr: "missing required field 'task_key'",
		},
		{
			name:    "invalid run_if",
			raw:     map[string]any{"tasks": []any{map[string]any{"task_key": "t", "run_if": "SOMETIMES"}}},
			wantErr: "'SOMETIMES' is not a valid value",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromValue(tc.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestJob_AsValue(t *testing.T) {
	job := &Job{Name: core.ValueOf("a"), Description: core.ValueOf("x")}

	val, err := job.AsValue()

	require.NoError(t, err)
	want := cty.ObjectVal(map[string]cty.Value{
		"name":        cty.StringVal("a"),
		"description": cty.StringVal("x"),
	})
	assert.True(t, want.RawEquals(val), "got %#v", val)
	assert.Equal(t, "jobs", job.ResourceType())
}

func TestJob_AsValue_KeepsExplicitZeroValues(t *testing.T) {
	// --- Arrange ---
	job, err := FromValue(map[string]any{
		"name":        "a",
		"description": "",
		"tasks": []any{
			map[string]any{"task_key": "t", "max_retries": 0, "description": ""},
		},
	})
	require.NoError(t, err)

	// --- Act ---
	val, err := job.AsValue()

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "", val.GetAttr("description").AsString())
	task := val.GetAttr("tasks").Index(cty.NumberIntVal(0))
	assert.True(t, task.GetAttr("max_retries").RawEquals(cty.NumberIntVal(0)))
	assert.Equal(t, "", task.GetAttr("description").AsString())
	assert.False(t, task.Type().HasAttribute("run_if"), "unset fields stay out of the output")
}
