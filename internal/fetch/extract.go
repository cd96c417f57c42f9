package fetch

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// archiveSuffixes lists the recognized auto-extract suffixes. None is a
// suffix of another, so at most one of them matches a given name.
var archiveSuffixes = []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tgz", ".tar", ".zip"}

// matchArchiveSuffix returns the recognized archive suffix of name, or "" if
// none match.
func matchArchiveSuffix(name string) string {
	for _, suf := range archiveSuffixes {
		if strings.HasSuffix(name, suf) {
			return suf
		}
	}
	return ""
}

// autoExtract applies the auto-extract policy: if path's
// basename is not in noExtract and matches a known archive suffix, its
// contents are extracted into destDir (stripping a shared leading directory
// component, however many levels deep) and the archive file itself is
// removed. Reports whether extraction happened.
func autoExtract(path string, destDir string, noExtract map[string]struct{}) (bool, error) {
	base := filepath.Base(path)
	if _, skip := noExtract[base]; skip {
		return false, nil
	}

	suf := matchArchiveSuffix(base)
	if suf == "" {
		return false, nil
	}

	var err error
	switch suf {
	case ".zip":
		err = extractZip(path, destDir)
	case ".tar":
		err = extractTar(path, destDir, func(f *os.File) (io.Reader, error) { return f, nil })
	case ".tar.gz", ".tgz":
		err = extractTar(path, destDir, func(f *os.File) (io.Reader, error) { return gzip.NewReader(f) })
	case ".tar.bz2":
		err = extractTar(path, destDir, func(f *os.File) (io.Reader, error) { return bzip2.NewReader(f), nil })
	case ".tar.xz":
		err = &ExtractError{Path: path, Cause: errUnsupportedCodec}
	}
	if err != nil {
		return false, err
	}

	if rmErr := os.Remove(path); rmErr != nil {
		return true, &ExtractError{Path: path, Cause: rmErr}
	}
	return true, nil
}

// entrySegments splits a cleaned, slash-separated archive entry path into
// its path segments.
func entrySegments(name string) []string {
	clean := strings.Trim(path.Clean("/"+name), "/")
	if clean == "" || clean == "." {
		return nil
	}
	return strings.Split(clean, "/")
}

// dirSegments is the directory chain an entry contributes toward the
// archive-wide common prefix: its own path for a directory entry, or its
// parent path for a file (the basename never constrains the prefix).
func dirSegments(name string, isDir bool) []string {
	segs := entrySegments(name)
	if isDir {
		return segs
	}
	if len(segs) == 0 {
		return nil
	}
	return segs[:len(segs)-1]
}

// lcp returns the longest common leading sequence of a and b.
func lcp(a, b []string) []string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// commonPrefix computes the shared leading directory-segment sequence
// across every entry: if every entry begins with <P>/, then <P>/ is
// removed from each entry, however many levels deep the shared prefix
// runs. A single entry with no
// parent directory (a bare top-level file) yields an empty prefix,
// disqualifying stripping for the whole archive.
func commonPrefix(names []string, isDir []bool) []string {
	var prefix []string
	started := false
	for i, name := range names {
		segs := dirSegments(name, isDir[i])
		if !started {
			prefix = segs
			started = true
			continue
		}
		prefix = lcp(prefix, segs)
		if len(prefix) == 0 {
			return nil
		}
	}
	return prefix
}

func stripPrefix(name string, prefix []string) (string, bool) {
	segs := entrySegments(name)
	if len(segs) < len(prefix) {
		return "", false
	}
	for i, p := range prefix {
		if segs[i] != p {
			return "", false
		}
	}
	rest := segs[len(prefix):]
	if len(rest) == 0 {
		return "", false // the entry names exactly the stripped directory itself
	}
	return strings.Join(rest, "/"), true
}

func extractZip(srcPath, destDir string) error {
	r, err := zip.OpenReader(srcPath)
	if err != nil {
		return &ExtractError{Path: srcPath, Cause: err}
	}
	defer r.Close()

	names := make([]string, len(r.File))
	isDir := make([]bool, len(r.File))
	for i, f := range r.File {
		names[i] = f.Name
		isDir[i] = f.FileInfo().IsDir()
	}
	prefix := commonPrefix(names, isDir)

	for _, f := range r.File {
		rel, ok := stripPrefix(f.Name, prefix)
		if !ok {
			continue
		}
		target := filepath.Join(destDir, rel)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &ExtractError{Path: srcPath, Cause: err}
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return &ExtractError{Path: srcPath, Cause: err}
		}
		if err := copyZipEntry(f, target); err != nil {
			return &ExtractError{Path: srcPath, Cause: err}
		}
	}
	return nil
}

func copyZipEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// extractTar reads a tar stream twice: once to gather entry names for the
// common-prefix computation, once to write the stripped tree. decompress
// wraps the raw file for plain/gzip/bzip2 tar variants.
func extractTar(srcPath, destDir string, decompress func(*os.File) (io.Reader, error)) error {
	names, isDir, err := tarEntryNames(srcPath, decompress)
	if err != nil {
		return &ExtractError{Path: srcPath, Cause: err}
	}
	prefix := commonPrefix(names, isDir)

	f, err := os.Open(srcPath)
	if err != nil {
		return &ExtractError{Path: srcPath, Cause: err}
	}
	defer f.Close()

	r, err := decompress(f)
	if err != nil {
		return &ExtractError{Path: srcPath, Cause: err}
	}
	tr := tar.NewReader(r)

	var symlinks []*tar.Header
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &ExtractError{Path: srcPath, Cause: err}
		}

		rel, ok := stripPrefix(hdr.Name, prefix)
		if !ok {
			continue
		}
		target := filepath.Join(destDir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &ExtractError{Path: srcPath, Cause: err}
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return &ExtractError{Path: srcPath, Cause: err}
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return &ExtractError{Path: srcPath, Cause: err}
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return &ExtractError{Path: srcPath, Cause: err}
			}
			out.Close()
		case tar.TypeSymlink:
			h := *hdr
			h.Name = rel
			symlinks = append(symlinks, &h)
		}
	}

	for _, hdr := range symlinks {
		target := filepath.Join(destDir, hdr.Name)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return &ExtractError{Path: srcPath, Cause: err}
		}
		_ = os.Symlink(hdr.Linkname, target) // a dangling symlink target is the recipe's problem, not ours
	}
	return nil
}

func tarEntryNames(srcPath string, decompress func(*os.File) (io.Reader, error)) ([]string, []bool, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r, err := decompress(f)
	if err != nil {
		return nil, nil, err
	}
	tr := tar.NewReader(r)

	var names []string
	var isDir []bool
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		names = append(names, hdr.Name)
		isDir = append(isDir, hdr.Typeflag == tar.TypeDir)
	}
	return names, isDir, nil
}
