package arfmt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Member is one member read back from an ar archive: its header fields
// and its raw content.
type Member struct {
	Header Header
	Data   []byte
}

// ReadAll parses a full BSD ar archive from r, returning its members in
// archive order. Used by this module's own round-trip tests; the build
// pipeline never reads ipk archives back.
func ReadAll(r io.Reader) ([]Member, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(GlobalMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("arfmt: reading global magic: %w", err)
	}
	if string(magic) != GlobalMagic {
		return nil, fmt.Errorf("arfmt: bad global magic %q", magic)
	}

	var members []Member
	for {
		hdrBuf := make([]byte, headerSize)
		_, err := io.ReadFull(br, hdrBuf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("arfmt: reading member header: %w", err)
		}

		name := strings.TrimRight(string(hdrBuf[0:16]), " ")
		modeStr := strings.TrimSpace(string(hdrBuf[40:48]))
		sizeStr := strings.TrimSpace(string(hdrBuf[48:58]))

		mode, err := strconv.ParseUint(modeStr, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("arfmt: parsing mode for %q: %w", name, err)
		}
		size, err := strconv.ParseInt(sizeStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("arfmt: parsing size for %q: %w", name, err)
		}

		data := make([]byte, size)
		if _, err := io.ReadFull(br, data); err != nil {
			return nil, fmt.Errorf("arfmt: reading content for %q: %w", name, err)
		}
		if size%2 != 0 {
			if _, err := br.Discard(1); err != nil {
				return nil, fmt.Errorf("arfmt: discarding pad byte for %q: %w", name, err)
			}
		}

		members = append(members, Member{
			Header: Header{Name: name, Mode: uint32(mode), Size: size},
			Data:   data,
		})
	}

	return members, nil
}
