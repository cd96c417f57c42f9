package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/opkgforge/corebuild/internal/recipe"
)

// Acquire populates srcDir for one architecture's build variant:
// sources are fetched in declaration order (never in parallel),
// verified against their declared checksum, and auto-extracted.
func Acquire(ctx context.Context, fetcher Fetcher, bv *recipe.BuildRecipe, srcDir string) error {
	if len(bv.Sources) != len(bv.Checksums) {
		return fmt.Errorf("%w: len(sources)=%d != len(checksums)=%d", ErrFetch, len(bv.Sources), len(bv.Checksums))
	}

	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return err
	}

	for i, uri := range bv.Sources {
		checksum := bv.Checksums[i]
		dest := filepath.Join(srcDir, filepath.Base(uri))

		if err := fetcher.Fetch(ctx, uri, dest); err != nil {
			return err
		}

		if checksum != "SKIP" {
			actual, err := sha256File(dest)
			if err != nil {
				return &FetchError{URI: uri, Cause: err}
			}
			if actual != checksum {
				return &ChecksumMismatch{URI: uri, Expected: checksum, Actual: actual}
			}
		}

		if _, err := autoExtract(dest, srcDir, bv.Parent.NoExtract); err != nil {
			return err
		}
	}

	return nil
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	d, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", err
	}
	return d.Encoded(), nil
}
