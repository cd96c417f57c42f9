package ipk

import (
	"time"

	"github.com/klauspost/compress/gzip"
)

// newDeterministicGzip opens a gzip writer over w with a fixed mtime=0,
// no-filename header, so the compressed stream carries nothing the host
// clock or filesystem could vary.
func newDeterministicGzip(w interface{ Write([]byte) (int, error) }) *gzip.Writer {
	gw, _ := gzip.NewWriterLevel(w, gzip.BestCompression)
	gw.ModTime = time.Unix(0, 0)
	gw.Name = ""
	gw.Comment = ""
	return gw
}
