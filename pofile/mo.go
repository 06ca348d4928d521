package pofile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"strings"
)

// moMagic is the little-endian magic number of GNU MO files.
const moMagic = 0x950412de

// eot separates msgctxt from msgid in MO original strings.
const eot = "\x04"

// CompileMO serializes the catalog to the GNU gettext binary MO format.
// Untranslated and obsolete entries are skipped, matching msgfmt. The
// hashing table is omitted (size 0), which every gettext runtime accepts.
func (c *Catalog) CompileMO() ([]byte, error) {
	type pair struct {
		orig  string
		trans string
	}

	var pairs []pair
	if c.Header != nil {
		pairs = append(pairs, pair{orig: "", trans: c.Header.MsgStr})
	}
	for _, e := range c.Entries {
		if e.Obsolete || e.MsgID == "" {
			continue
		}
		orig := e.MsgID
		if e.MsgCtxt != "" {
			orig = e.MsgCtxt + eot + orig
		}

		var trans string
		if e.MsgIDPlural != "" {
			if len(e.MsgStrPlural) == 0 {
				continue
			}
			orig += "\x00" + e.MsgIDPlural
			indices := make([]int, 0, len(e.MsgStrPlural))
			for idx := range e.MsgStrPlural {
				indices = append(indices, idx)
			}
			sort.Ints(indices)
			forms := make([]string, 0, len(indices))
			for _, idx := range indices {
				forms = append(forms, e.MsgStrPlural[idx])
			}
			trans = strings.Join(forms, "\x00")
		} else {
			if e.MsgStr == "" {
				continue
			}
			trans = e.MsgStr
		}

		pairs = append(pairs, pair{orig: orig, trans: trans})
	}

	// The original-string table must be sorted for binary search.
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].orig < pairs[j].orig })

	n := uint32(len(pairs))
	const headerSize = 28
	origTableOff := uint32(headerSize)
	transTableOff := origTableOff + 8*n
	dataOff := transTableOff + 8*n

	var data bytes.Buffer
	origIdx := make([][2]uint32, n)  // length, offset
	transIdx := make([][2]uint32, n) // length, offset

	for i, p := range pairs {
		origIdx[i] = [2]uint32{uint32(len(p.orig)), dataOff + uint32(data.Len())}
		data.WriteString(p.orig)
		data.WriteByte(0)
	}
	for i, p := range pairs {
		transIdx[i] = [2]uint32{uint32(len(p.trans)), dataOff + uint32(data.Len())}
		data.WriteString(p.trans)
		data.WriteByte(0)
	}

	var out bytes.Buffer
	write := func(v uint32) {
		binary.Write(&out, binary.LittleEndian, v)
	}

	write(moMagic)
	write(0) // format revision
	write(n)
	write(origTableOff)
	write(transTableOff)
	write(0)       // hashing table size
	write(dataOff) // hashing table offset (empty)

	for _, idx := range origIdx {
		write(idx[0])
		write(idx[1])
	}
	for _, idx := range transIdx {
		write(idx[0])
		write(idx[1])
	}

	if _, err := out.ReadFrom(bytes.NewReader(data.Bytes())); err != nil {
		return nil, fmt.Errorf("assembling MO data: %w", err)
	}

	return out.Bytes(), nil
}

// CompileMOFile compiles the catalog and writes the MO file to disk.
func (c *Catalog) CompileMOFile(path string) error {
	data, err := c.CompileMO()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
