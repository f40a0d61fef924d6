package core

// Resource is implemented by every member of the closed set of resource
// variants, e.g. *jobs.Job and *pipelines.Pipeline.
type Resource interface {
	// ResourceType returns the plural configuration key of the variant,
	// such as "jobs".
	ResourceType() string
}
