package pipelines

import (
	"reflect"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/internal/transform"
	"github.com/zclconf/go-cty/cty"
)

// ResourceType is the configuration key under `resources` that holds
// pipelines.
const ResourceType = "pipelines"

// Pipeline is a declarative data pipeline.
type Pipeline struct {
	Name          core.VariableOr[string]            `json:"name,omitempty"`
	Catalog       core.VariableOr[string]            `json:"catalog,omitempty"`
	Schema        core.VariableOr[string]            `json:"schema,omitempty"`
	Libraries     core.VariableOr[[]Library]         `json:"libraries,omitempty"`
	Clusters      []Cluster                          `json:"clusters,omitempty"`
	Configuration map[string]core.VariableOr[string] `json:"configuration,omitempty"`
	Continuous    core.VariableOr[bool]              `json:"continuous,omitempty"`
	Development   core.VariableOr[bool]              `json:"development,omitempty"`
	Serverless    core.VariableOr[bool]              `json:"serverless,omitempty"`
	Photon        core.VariableOr[bool]              `json:"photon,omitempty"`
	Edition       core.VariableOr[Edition]           `json:"edition,omitempty"`
	Channel       core.VariableOr[Channel]           `json:"channel,omitempty"`
	Notifications []Notifications                    `json:"notifications,omitempty"`
	Tags          map[string]string                  `json:"tags,omitempty"`
}

// ResourceType implements core.Resource.
func (p *Pipeline) ResourceType() string {
	return ResourceType
}

type Library struct {
	Notebook *FileLibrary            `json:"notebook,omitempty"`
	File     *FileLibrary            `json:"file,omitempty"`
	Glob     *PathPattern            `json:"glob,omitempty"`
	Jar      core.VariableOr[string] `json:"jar,omitempty"`
}

type FileLibrary struct {
	Path core.VariableOr[string] `json:"path"`
}

type PathPattern struct {
	Include string `json:"include"`
}

type Cluster struct {
	Label      core.VariableOr[string] `json:"label,omitempty"`
	NodeTypeID core.VariableOr[string] `json:"node_type_id,omitempty"`
	NumWorkers core.VariableOr[int]    `json:"num_workers,omitempty"`
	Autoscale  *Autoscale              `json:"autoscale,omitempty"`
	SparkConf  map[string]string       `json:"spark_conf,omitempty"`
	CustomTags map[string]string       `json:"custom_tags,omitempty"`
}

type Autoscale struct {
	MinWorkers int                            `json:"min_workers"`
	MaxWorkers int                            `json:"max_workers"`
	Mode       core.VariableOr[AutoscaleMode] `json:"mode,omitempty"`
}

type AutoscaleMode string

const (
	AutoscaleModeEnhanced AutoscaleMode = "ENHANCED"
	AutoscaleModeLegacy   AutoscaleMode = "LEGACY"
)

func (AutoscaleMode) EnumValues() []string {
	return []string{string(AutoscaleModeEnhanced), string(AutoscaleModeLegacy)}
}

// Edition selects the product edition that runs the pipeline.
type Edition string

const (
	EditionCore     Edition = "CORE"
	EditionPro      Edition = "PRO"
	EditionAdvanced Edition = "ADVANCED"
)

func (Edition) EnumValues() []string {
	return []string{string(EditionCore), string(EditionPro), string(EditionAdvanced)}
}

type Channel string

const (
	ChannelCurrent Channel = "CURRENT"
	ChannelPreview Channel = "PREVIEW"
)

func (Channel) EnumValues() []string {
	return []string{string(ChannelCurrent), string(ChannelPreview)}
}

type Notifications struct {
	EmailRecipients []string `json:"email_recipients,omitempty"`
	Alerts          []string `json:"alerts,omitempty"`
}

func init() {
	transform.Default().MustIntern(reflect.TypeFor[Pipeline]())
}

// FromValue converts an untyped configuration value into a Pipeline.
func FromValue(v any) (*Pipeline, error) {
	return transform.As[*Pipeline](v)
}

// AsValue converts the pipeline back into its configuration form.
func (p *Pipeline) AsValue() (cty.Value, error) {
	return transform.Encode(p)
}
