// Package archive reads and writes the zip container of an OOXML package.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/valyala/bytebufferpool"
)

// Part is a single entry of the package.
type Part struct {
	// Header is the original zip header; its Method is kept on write.
	Header zip.FileHeader
	Data   []byte
}

// Name returns the part path inside the archive (no leading slash).
func (p *Part) Name() string {
	return p.Header.Name
}

// Archive is an in-memory, order-preserving view of a zip package.
type Archive struct {
	parts []*Part
	index map[string]int
}

// Read decodes all parts of a zip package.
func Read(data []byte) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	a := &Archive{index: make(map[string]int, len(r.File))}
	for _, f := range r.File {
		blob, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		a.index[f.Name] = len(a.parts)
		a.parts = append(a.parts, &Part{Header: f.FileHeader, Data: blob})
	}

	return a, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Names returns the part names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.parts))
	for i, p := range a.parts {
		names[i] = p.Name()
	}
	return names
}

// Get returns the content of a part. Leading slashes are ignored.
func (a *Archive) Get(name string) ([]byte, bool) {
	i, ok := a.index[strings.TrimPrefix(name, "/")]
	if !ok {
		return nil, false
	}
	return a.parts[i].Data, true
}

// Part returns the named part with its header.
func (a *Archive) Part(name string) (*Part, bool) {
	i, ok := a.index[strings.TrimPrefix(name, "/")]
	if !ok {
		return nil, false
	}
	return a.parts[i], true
}

// Has reports whether the archive contains the named part.
func (a *Archive) Has(name string) bool {
	_, ok := a.index[strings.TrimPrefix(name, "/")]
	return ok
}

// Set replaces the content of an existing part, or appends a new deflated
// part when the name is unknown.
func (a *Archive) Set(name string, data []byte) {
	name = strings.TrimPrefix(name, "/")
	if i, ok := a.index[name]; ok {
		a.parts[i].Data = data
		return
	}
	a.index[name] = len(a.parts)
	a.parts = append(a.parts, &Part{
		Header: zip.FileHeader{Name: name, Method: zip.Deflate},
		Data:   data,
	})
}

// Match returns the names of parts with the given prefix and suffix, sorted.
func (a *Archive) Match(prefix, suffix string) []string {
	var names []string
	for _, p := range a.parts {
		n := p.Name()
		if strings.HasPrefix(n, prefix) && strings.HasSuffix(n, suffix) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// extTimeExtraID is the extended timestamp field that zip.Writer appends
// itself whenever a header carries a modification time.
const extTimeExtraID = 0x5455

// stripExtraField returns extra without the blocks tagged id. A truncated
// trailing block is dropped.
func stripExtraField(extra []byte, id uint16) []byte {
	if len(extra) == 0 {
		return extra
	}
	out := make([]byte, 0, len(extra))
	for len(extra) >= 4 {
		tag := binary.LittleEndian.Uint16(extra[:2])
		size := int(binary.LittleEndian.Uint16(extra[2:4]))
		if 4+size > len(extra) {
			break
		}
		if tag != id {
			out = append(out, extra[:4+size]...)
		}
		extra = extra[4+size:]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Bytes encodes the archive, keeping part order and per-part compression.
func (a *Archive) Bytes() ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	zw := zip.NewWriter(buf)
	for _, p := range a.parts {
		hdr := p.Header
		hdr.CRC32 = 0
		hdr.CompressedSize64 = 0
		hdr.UncompressedSize64 = 0
		hdr.CompressedSize = 0
		hdr.UncompressedSize = 0
		hdr.Extra = stripExtraField(hdr.Extra, extTimeExtraID)
		w, err := zw.CreateHeader(&hdr)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", hdr.Name, err)
		}
		if _, err := w.Write(p.Data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", hdr.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}
