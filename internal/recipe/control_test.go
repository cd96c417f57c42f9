package recipe

import "testing"

func TestControlFieldsOrder(t *testing.T) {
	r := &Recipe{RecipeDir: "/recipes/foo", Maintainer: "Jane <j@example.com>", License: "MIT"}
	bv := &BuildRecipe{Parent: r}
	pkg := &Package{
		Parent:         bv,
		Name:           "foo",
		Description:    "the foo package",
		Version:        "0.0.1-1",
		Section:        "utils",
		InstallDepends: []Dependency{{Name: "libbar"}},
	}

	fields := pkg.ControlFields("rmall")

	want := []string{"Package", "Description", "Version", "Section", "Maintainer", "License", "Architecture", "Depends", "Source"}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d: %+v", len(fields), len(want), fields)
	}
	for i, k := range want {
		if fields[i].Key != k {
			t.Errorf("field %d = %q, want %q", i, fields[i].Key, k)
		}
	}
	if fields[0].Value != "foo" || fields[len(fields)-1].Value != "foo" {
		t.Fatalf("unexpected values: %+v", fields)
	}
}
