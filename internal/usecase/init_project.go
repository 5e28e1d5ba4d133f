package usecase

import (
	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

type InitProject struct {
	initializer ports.ProjectInitializer
}

func NewInitProject(initializer ports.ProjectInitializer) *InitProject {
	return &InitProject{initializer: initializer}
}

func (uc *InitProject) Execute(root string, force bool) error {
	return uc.initializer.Init(domain.ProjectSpec{Root: root}, force)
}
