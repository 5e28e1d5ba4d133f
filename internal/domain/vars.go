package domain

import "maps"

// Vars holds the values {{name}} placeholders in docker mounts and arguments
// expand to.
type Vars map[string]string

// VarProjectRoot is the absolute project root.
const VarProjectRoot = "project_root"

// ProjectVars are the variables every docker invocation can reference.
func ProjectVars(root string) Vars {
	return Vars{VarProjectRoot: root}
}

// Clone returns an independent copy; nil stays an empty map.
func (v Vars) Clone() Vars {
	out := make(Vars, len(v))
	maps.Copy(out, v)
	return out
}

// With returns a copy of v with key set to value.
func (v Vars) With(key, value string) Vars {
	out := v.Clone()
	out[key] = value
	return out
}
