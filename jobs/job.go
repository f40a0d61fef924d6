// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package jobs

import (
	"reflect"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/internal/transform"
	"github.com/zclconf/go-cty/cty"
)

// ResourceType is the configuration key under `resources` that holds jobs.
const ResourceType = "jobs"

// Job is a scheduled unit of work made of one or more tasks.
type Job struct {
	Name               core.VariableOr[string]  `json:"name,omitempty"`
	Description        core.VariableOr[string]  `json:"description,omitempty"`
	Tags               map[string]string        `json:"tags,omitempty"`
	MaxConcurrentRuns  core.VariableOr[int]     `json:"max_concurrent_runs,omitempty"`
	TimeoutSeconds     core.VariableOr[int]     `json:"timeout_seconds,omitempty"`
	Tasks              []Task                   `json:"tasks,omitempty"`
	Parameters         []JobParameterDefinition `json:"parameters,omitempty"`
	Schedule           *CronSchedule            `json:"schedule,omitempty"`
	EmailNotifications *EmailNotifications      `json:"email_notifications,omitempty"`
	Permissions        []Permission             `json:"permissions,omitempty"`
}

// ResourceType implements core.Resource.
func (j *Job) ResourceType() string {
	return ResourceType
}

// JobParameterDefinition declares a job-level parameter.
type JobParameterDefinition struct {
	Name    string                  `json:"name"`
	Default core.VariableOr[string] `json:"default"`
}

// CronSchedule triggers a job on a Quartz cron expression.
type CronSchedule struct {
	QuartzCronExpression core.VariableOr[string]      `json:"quartz_cron_expression"`
	TimezoneID           core.VariableOr[string]      `json:"timezone_id"`
	PauseStatus          core.VariableOr[PauseStatus] `json:"pause_status,omitempty"`
}

// PauseStatus tells whether a schedule is active.
type PauseStatus string

const (
	PauseStatusPaused   PauseStatus = "PAUSED"
	PauseStatusUnpaused PauseStatus = "UNPAUSED"
)

// EnumValues implements transform.Enum.
func (PauseStatus) EnumValues() []string {
	return []string{string(PauseStatusPaused), string(PauseStatusUnpaused)}
}

// EmailNotifications lists recipients per run event.
type EmailNotifications struct {
	OnStart   []string `json:"on_start,omitempty"`
	OnSuccess []string `json:"on_success,omitempty"`
	OnFailure []string `json:"on_failure,omitempty"`
}

// Permission grants a level to exactly one principal.
type Permission struct {
	Level                PermissionLevel         `json:"level"`
	UserName             core.VariableOr[string] `json:"user_name,omitempty"`
	GroupName            core.VariableOr[string] `json:"group_name,omitempty"`
	ServicePrincipalName core.VariableOr[string] `json:"service_principal_name,omitempty"`
}

type PermissionLevel string

const (
	PermissionLevelCanManage    PermissionLevel = "CAN_MANAGE"
	PermissionLevelCanManageRun PermissionLevel = "CAN_MANAGE_RUN"
	PermissionLevelCanView      PermissionLevel = "CAN_VIEW"
	PermissionLevelIsOwner      PermissionLevel = "IS_OWNER"
)

func (PermissionLevel) EnumValues() []string {
	return []string{
		string(PermissionLevelCanManage),
		string(PermissionLevelCanManageRun),
		string(PermissionLevelCanView),
		string(PermissionLevelIsOwner),
	}
}

func init() {
	transform.Default().MustIntern(reflect.TypeFor[Job]())
}

// FromValue converts an untyped configuration value into a Job. A *Job or
// Job is returned as is.
func FromValue(v any) (*Job, error) {
	return transform.As[*Job](v)
}

// AsValue converts the job back into its configuration form.
func (j *Job) AsValue() (cty.Value, error) {
	return transform.Encode(j)
}
