package paths

import "testing"

func TestSrcDir(t *testing.T) {
	got := SrcDir("/work", "foo", "rmall")
	want := "/work/foo/rmall/src"
	if got != want {
		t.Errorf("SrcDir: got %q, want %q", got, want)
	}
}

func TestPkgDir(t *testing.T) {
	got := PkgDir("/work", "foo", "rmall", "foo-utils")
	want := "/work/foo/rmall/pkg/foo-utils"
	if got != want {
		t.Errorf("PkgDir: got %q, want %q", got, want)
	}
}

func TestArchiveFile(t *testing.T) {
	got := ArchiveFile("/dist", "rmall", "foo", "0.0.1-1")
	want := "/dist/rmall/foo_0.0.1-1_rmall.ipk"
	if got != want {
		t.Errorf("ArchiveFile: got %q, want %q", got, want)
	}
}
