package jobs

import "github.com/specialistvlad/bundlefn/core"

// Task is one step of a job. Exactly one of the task kinds is expected to be
// set.
type Task struct {
	TaskKey           string                  `json:"task_key"`
	Description       core.VariableOr[string] `json:"description,omitempty"`
	DependsOn         []TaskDependency        `json:"depends_on,omitempty"`
	RunIf             core.VariableOr[RunIf]  `json:"run_if,omitempty"`
	MaxRetries        core.VariableOr[int]    `json:"max_retries,omitempty"`
	TimeoutSeconds    core.VariableOr[int]    `json:"timeout_seconds,omitempty"`
	ExistingClusterID core.VariableOr[string] `json:"existing_cluster_id,omitempty"`
	Libraries         []Library               `json:"libraries,omitempty"`

	NotebookTask    *NotebookTask    `json:"notebook_task,omitempty"`
	PythonWheelTask *PythonWheelTask `json:"python_wheel_task,omitempty"`
	ForEachTask     *ForEachTask     `json:"for_each_task,omitempty"`
}

type TaskDependency struct {
	TaskKey string                  `json:"task_key"`
	Outcome core.VariableOr[string] `json:"outcome,omitempty"`
}

// RunIf decides when a task runs based on its dependencies.
type RunIf string

const (
	RunIfAllSuccess        RunIf = "ALL_SUCCESS"
	RunIfAllDone           RunIf = "ALL_DONE"
	RunIfNoneFailed        RunIf = "NONE_FAILED"
	RunIfAtLeastOneSuccess RunIf = "AT_LEAST_ONE_SUCCESS"
	RunIfAllFailed         RunIf = "ALL_FAILED"
	RunIfAtLeastOneFailed  RunIf = "AT_LEAST_ONE_FAILED"
)

func (RunIf) EnumValues() []string {
	return []string{
		string(RunIfAllSuccess),
		string(RunIfAllDone),
		string(RunIfNoneFailed),
		string(RunIfAtLeastOneSuccess),
		string(RunIfAllFailed),
		string(RunIfAtLeastOneFailed),
	}
}

type NotebookTask struct {
	NotebookPath   core.VariableOr[string]            `json:"notebook_path"`
	BaseParameters map[string]core.VariableOr[string] `json:"base_parameters,omitempty"`
	Source         core.VariableOr[Source]            `json:"source,omitempty"`
}

type Source string

const (
	SourceWorkspace Source = "WORKSPACE"
	SourceGit       Source = "GIT"
)

func (Source) EnumValues() []string {
	return []string{string(SourceWorkspace), string(SourceGit)}
}

type PythonWheelTask struct {
	PackageName string   `json:"package_name"`
	EntryPoint  string   `json:"entry_point"`
	Parameters  []string `json:"parameters,omitempty"`
}

// ForEachTask runs the nested task once per element of Inputs. The nested
// task has the same shape as its parent, so the schema is self-referential.
type ForEachTask struct {
	Inputs      core.VariableOr[string] `json:"inputs"`
	Concurrency core.VariableOr[int]    `json:"concurrency,omitempty"`
	Task        core.VariableOr[Task]   `json:"task"`
}

type Library struct {
	Whl  core.VariableOr[string] `json:"whl,omitempty"`
	Jar  core.VariableOr[string] `json:"jar,omitempty"`
	Pypi *PythonPyPiLibrary      `json:"pypi,omitempty"`
}

type PythonPyPiLibrary struct {
	Package string                  `json:"package"`
	Repo    core.VariableOr[string] `json:"repo,omitempty"`
}
