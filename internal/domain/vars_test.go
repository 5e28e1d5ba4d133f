package domain

import "testing"

func TestProjectVars(t *testing.T) {
	v := ProjectVars("/srv/ff")
	if v[VarProjectRoot] != "/srv/ff" {
		t.Fatalf("expected project_root=/srv/ff, got %v", v)
	}
}

func TestVarsWith_DoesNotMutate(t *testing.T) {
	base := Vars{"image": "fragment-fusion:latest"}
	next := base.With("cores", "8")

	if next["cores"] != "8" || next["image"] != "fragment-fusion:latest" {
		t.Fatalf("unexpected vars %v", next)
	}
	if _, ok := base["cores"]; ok {
		t.Fatal("base must stay unchanged")
	}
}

func TestVarsClone_Nil(t *testing.T) {
	var v Vars
	c := v.Clone()
	if c == nil || len(c) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", c)
	}
}
