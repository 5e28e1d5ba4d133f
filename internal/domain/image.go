package domain

// ImageRef is a validated container image tag reference.
type ImageRef struct {
	// Repository is the reference without the tag, as the user wrote it.
	Repository string
	Tag        string
}

func (r ImageRef) String() string {
	if r.Tag == "" {
		return r.Repository
	}
	return r.Repository + ":" + r.Tag
}

// WithTag returns the same repository with another tag.
func (r ImageRef) WithTag(tag string) ImageRef {
	return ImageRef{Repository: r.Repository, Tag: tag}
}

// Mount binds a host path into a container.
type Mount struct {
	Host      string
	Container string
}

// ContainerRun describes a `docker run` invocation.
type ContainerRun struct {
	Image       ImageRef
	Name        string
	Detach      bool
	Remove      bool
	Interactive bool
	// Capture collects the container's output instead of streaming it.
	Capture bool
	// Runtime selects a container runtime, e.g. "nvidia".
	Runtime string
	// GPU requests all host GPUs.
	GPU       bool
	Mounts    []Mount
	Ports     []string
	Env       []string
	ExtraArgs []string
	Command   []string
}
