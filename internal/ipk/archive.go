package ipk

import (
	"bytes"
	"io"
	"time"

	"github.com/opkgforge/corebuild/internal/arfmt"
	"github.com/opkgforge/corebuild/internal/recipe"
)

// debianBinaryVersion is the fixed 4-byte payload of the debian-binary
// member.
const debianBinaryVersion = "2.0\n"

// Write assembles the full ipk archive for pkg, built for arch from the
// tree at pkgDir, into w: a BSD ar archive with exactly three members in
// order (debian-binary, control.tar.gz, data.tar.gz).
// Every timestamp pinned throughout equals epoch (recipe.Timestamp, per
// invariant I6).
func Write(w io.Writer, epoch time.Time, pkg *recipe.Package, arch string, pkgDir string) error {
	var control bytes.Buffer
	if err := WriteControl(&control, epoch, pkg, arch); err != nil {
		return err
	}

	var data bytes.Buffer
	if err := WriteData(&data, epoch, pkgDir); err != nil {
		return err
	}

	aw := arfmt.NewWriter(w)

	if err := aw.WriteMember(arfmt.Header{
		Name: "debian-binary",
		Mode: 0o644,
		Size: int64(len(debianBinaryVersion)),
	}, bytes.NewReader([]byte(debianBinaryVersion))); err != nil {
		return &WriteError{Member: "debian-binary", Cause: err}
	}

	if err := aw.WriteMember(arfmt.Header{
		Name: "control.tar.gz",
		Mode: 0o644,
		Size: int64(control.Len()),
	}, &control); err != nil {
		return &WriteError{Member: "control.tar.gz", Cause: err}
	}

	if err := aw.WriteMember(arfmt.Header{
		Name: "data.tar.gz",
		Mode: 0o644,
		Size: int64(data.Len()),
	}, &data); err != nil {
		return &WriteError{Member: "data.tar.gz", Cause: err}
	}

	return nil
}
