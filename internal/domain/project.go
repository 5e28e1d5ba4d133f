package domain

// ProjectSpec is the input to project scaffolding.
type ProjectSpec struct {
	Root string
}
