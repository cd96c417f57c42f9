package ipk

import (
	"archive/tar"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/opkgforge/corebuild/internal/recipe"
)

// WriteControl writes the control.tar.gz member: a directory "./", a
// "./control" file holding the RFC-822-style metadata block, one file per
// non-empty maintainer script, and (when the package declares any) a
// "./conffiles" listing.
func WriteControl(w io.Writer, epoch time.Time, pkg *recipe.Package, arch string) error {
	gw := newDeterministicGzip(w)
	tw := tar.NewWriter(gw)

	if err := writeDirEntry(tw, "./", epoch); err != nil {
		return &WriteError{Member: "control.tar.gz", Cause: err}
	}

	control := renderControl(pkg, arch)
	if err := writeFileEntry(tw, "./control", 0o644, epoch, []byte(control)); err != nil {
		return &WriteError{Member: "control.tar.gz", Cause: err}
	}

	scripts := MaintainerScripts(pkg)
	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeFileEntry(tw, "./"+name, 0o755, epoch, []byte(scripts[name])); err != nil {
			return &WriteError{Member: "control.tar.gz", Cause: err}
		}
	}

	if len(pkg.ConfFiles) > 0 {
		body := strings.Join(pkg.ConfFiles, "\n") + "\n"
		if err := writeFileEntry(tw, "./conffiles", 0o644, epoch, []byte(body)); err != nil {
			return &WriteError{Member: "control.tar.gz", Cause: err}
		}
	}

	if err := tw.Close(); err != nil {
		return &WriteError{Member: "control.tar.gz", Cause: err}
	}
	if err := gw.Close(); err != nil {
		return &WriteError{Member: "control.tar.gz", Cause: err}
	}
	return nil
}

// renderControl renders a [recipe.Package]'s [recipe.Package.ControlFields]
// as an RFC-822-style "Key: value" block, one field
// per line in the order ControlFields already produced.
func renderControl(pkg *recipe.Package, arch string) string {
	var b strings.Builder
	for _, kv := range pkg.ControlFields(arch) {
		fmt.Fprintf(&b, "%s: %s\n", kv.Key, kv.Value)
	}
	return b.String()
}

func writeDirEntry(tw *tar.Writer, name string, epoch time.Time) error {
	hdr := &tar.Header{
		Name:     name,
		Typeflag: tar.TypeDir,
		Mode:     0o755,
		ModTime:  epoch,
		Uid:      0,
		Gid:      0,
		Uname:    "",
		Gname:    "",
	}
	return tw.WriteHeader(hdr)
}

func writeFileEntry(tw *tar.Writer, name string, mode int64, epoch time.Time, data []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Typeflag: tar.TypeReg,
		Mode:     mode,
		Size:     int64(len(data)),
		ModTime:  epoch,
		Uid:      0,
		Gid:      0,
		Uname:    "",
		Gname:    "",
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}
