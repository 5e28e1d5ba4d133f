package ports

import (
	"context"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// CommandRunner executes external programs. It returns an error only when the
// program could not be started or waited on; exit codes travel in the result.
type CommandRunner interface {
	Run(ctx context.Context, cmd domain.Command) (domain.CommandResult, error)
}
