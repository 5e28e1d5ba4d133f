package ports

import (
	"context"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// ContainerEngine is the subset of the docker CLI the project uses.
type ContainerEngine interface {
	Build(ctx context.Context, image domain.ImageRef, contextDir string, noCache bool) (domain.CommandResult, error)
	Run(ctx context.Context, run domain.ContainerRun) (domain.CommandResult, error)
	ImageExists(ctx context.Context, image domain.ImageRef) (bool, error)
	ListContainers(ctx context.Context, ancestor string, all bool) ([]string, error)
	Stop(ctx context.Context, containers ...string) (domain.CommandResult, error)
	Remove(ctx context.Context, containers ...string) (domain.CommandResult, error)
	RemoveImages(ctx context.Context, images ...domain.ImageRef) (domain.CommandResult, error)
	PruneImages(ctx context.Context) (domain.CommandResult, error)
}
