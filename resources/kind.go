package resources

import (
	"fmt"
	"reflect"

	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/jobs"
	"github.com/specialistvlad/bundlefn/pipelines"
)

// Kind identifies a resource variant.
type Kind int

const (
	KindJob Kind = iota
	KindPipeline
)

type variant struct {
	plural   string
	singular string
	goType   reflect.Type
}

// variants is the closed set of resource variants, in processing order.
var variants = []variant{
	KindJob:      {plural: jobs.ResourceType, singular: "job", goType: reflect.TypeFor[*jobs.Job]()},
	KindPipeline: {plural: pipelines.ResourceType, singular: "pipeline", goType: reflect.TypeFor[*pipelines.Pipeline]()},
}

// Kinds returns every variant in processing order.
func Kinds() []Kind {
	kinds := make([]Kind, len(variants))
	for i := range variants {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Plural returns the configuration key of the variant, e.g. "jobs".
func (k Kind) Plural() string {
	return variants[k].plural
}

// Singular returns the human-readable name of the variant, e.g. "job".
func (k Kind) Singular() string {
	return variants[k].singular
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(variants) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return variants[k].singular
}

// KindOf returns the variant of a typed resource.
func KindOf(r core.Resource) (Kind, bool) {
	switch r.(type) {
	case *jobs.Job:
		return KindJob, true
	case *pipelines.Pipeline:
		return KindPipeline, true
	}
	return 0, false
}

// KindFromPlural looks a variant up by its configuration key.
func KindFromPlural(plural string) (Kind, bool) {
	for i, v := range variants {
		if v.plural == plural {
			return Kind(i), true
		}
	}
	return 0, false
}

func kindOfType(rt reflect.Type) (Kind, bool) {
	for i, v := range variants {
		if v.goType == rt {
			return Kind(i), true
		}
	}
	return 0, false
}

// Path returns the configuration path of a resource, e.g.
// ["resources", "jobs", "my_job"].
func Path(kind Kind, name string) []string {
	return []string{"resources", kind.Plural(), name}
}

func pathKey(kind Kind, name string) string {
	return "resources." + kind.Plural() + "." + name
}
