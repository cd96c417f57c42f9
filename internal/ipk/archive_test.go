package ipk

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/opkgforge/corebuild/internal/arfmt"
)

func TestWriteMemberOrderAndReproducibility(t *testing.T) {
	dir := t.TempDir()
	mustMkdirAll(t, filepath.Join(dir, "opt", "bin"))
	mustWriteFile(t, filepath.Join(dir, "opt", "bin", "foo"), 0o755, "#!/bin/sh\necho hi\n")

	pkg := testPackage()
	epoch := time.Unix(1700000000, 0).UTC()

	var first, second bytes.Buffer
	if err := Write(&first, epoch, pkg, "rmall", dir); err != nil {
		t.Fatalf("Write (first): %v", err)
	}
	if err := Write(&second, epoch, pkg, "rmall", dir); err != nil {
		t.Fatalf("Write (second): %v", err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatal("two runs over identical inputs produced different archives")
	}

	members, err := arfmt.ReadAll(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("arfmt.ReadAll: %v", err)
	}

	wantOrder := []string{"debian-binary", "control.tar.gz", "data.tar.gz"}
	if len(members) != len(wantOrder) {
		t.Fatalf("got %d members, want %d", len(members), len(wantOrder))
	}
	for i, want := range wantOrder {
		if members[i].Header.Name != want {
			t.Errorf("member %d: got %q, want %q", i, members[i].Header.Name, want)
		}
	}

	if string(members[0].Data) != "2.0\n" {
		t.Errorf("debian-binary payload = %q, want \"2.0\\n\"", members[0].Data)
	}
}

func TestWriteDistinctTimestampsDiffer(t *testing.T) {
	dir := t.TempDir()
	pkg := testPackage()

	var a, b bytes.Buffer
	if err := Write(&a, time.Unix(1000, 0), pkg, "rmall", dir); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(&b, time.Unix(2000, 0), pkg, "rmall", dir); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("archives built with different recipe timestamps should differ")
	}
}
