package testutil

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// SharedObject describes a synthetic ELF file with just enough
// structure for debug/elf to parse its dynamic section: a .dynstr
// string table, a .dynamic section referencing it and a .shstrtab.
// Tests use it to build dependency trees without needing a compiler
// or real libraries for the target architecture.
type SharedObject struct {
	Needed   []string
	RPaths   []string // DT_RPATH entries
	RunPaths []string // DT_RUNPATH entries

	// NoDynamic omits the .dynamic section entirely, like a static
	// binary.
	NoDynamic bool

	// CorruptFrom > 0 makes the DT_NEEDED entries starting at that
	// index reference string offsets past the end of .dynstr, which
	// must surface as a metadata read failure with the earlier
	// entries still intact.
	CorruptFrom int
}

type header64 struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type section64 struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Off       uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

const (
	ehSize = 64
	shSize = 64
)

// WriteFile writes the object to path and returns path.
func (so SharedObject) WriteFile(t *testing.T, path string) string {
	t.Helper()
	err := os.WriteFile(path, so.bytes(t), 0o755)
	require.NoError(t, err)
	return path
}

func (so SharedObject) bytes(t *testing.T) []byte {
	t.Helper()

	shstrtab := []byte("\x00.dynstr\x00.dynamic\x00.shstrtab\x00")
	const (
		nameDynstr   = 1
		nameDynamic  = 9
		nameShstrtab = 18
	)

	// .dynstr
	dynstr := []byte{0}
	addString := func(s string) uint64 {
		offset := uint64(len(dynstr))
		dynstr = append(dynstr, s...)
		dynstr = append(dynstr, 0)
		return offset
	}

	// .dynamic entries, order preserved
	type dyn struct{ tag, val uint64 }
	var entries []dyn
	for i, needed := range so.Needed {
		value := addString(needed)
		if so.CorruptFrom > 0 && i >= so.CorruptFrom {
			value = 0xffff // past the end of .dynstr
		}
		entries = append(entries, dyn{uint64(elf.DT_NEEDED), value})
	}
	for _, rpath := range so.RPaths {
		entries = append(entries, dyn{uint64(elf.DT_RPATH), addString(rpath)})
	}
	for _, runpath := range so.RunPaths {
		entries = append(entries, dyn{uint64(elf.DT_RUNPATH), addString(runpath)})
	}
	entries = append(entries, dyn{uint64(elf.DT_NULL), 0})

	dynamic := &bytes.Buffer{}
	for _, entry := range entries {
		err := binary.Write(dynamic, binary.LittleEndian, []uint64{entry.tag, entry.val})
		require.NoError(t, err)
	}

	var sections []section64
	var blobs [][]byte
	offset := uint64(ehSize)
	addSection := func(s section64, data []byte) {
		s.Off = offset
		s.Size = uint64(len(data))
		sections = append(sections, s)
		blobs = append(blobs, data)
		offset += s.Size
	}

	sections = append(sections, section64{}) // mandatory null section
	shstrndx := uint16(1)
	if !so.NoDynamic {
		addSection(section64{
			Name:      nameDynstr,
			Type:      uint32(elf.SHT_STRTAB),
			Flags:     uint64(elf.SHF_ALLOC),
			Addralign: 1,
		}, dynstr)
		addSection(section64{
			Name:      nameDynamic,
			Type:      uint32(elf.SHT_DYNAMIC),
			Flags:     uint64(elf.SHF_ALLOC | elf.SHF_WRITE),
			Link:      1, // .dynstr
			Addralign: 8,
			Entsize:   16,
		}, dynamic.Bytes())
		shstrndx = 3
	}
	addSection(section64{
		Name:      nameShstrtab,
		Type:      uint32(elf.SHT_STRTAB),
		Addralign: 1,
	}, shstrtab)

	header := header64{
		Type:      uint16(elf.ET_DYN),
		Machine:   uint16(elf.EM_X86_64),
		Version:   1,
		Shoff:     offset,
		Ehsize:    ehSize,
		Shentsize: shSize,
		Shnum:     uint16(len(sections)),
		Shstrndx:  shstrndx,
	}
	ident := []byte{0x7f, 'E', 'L', 'F',
		byte(elf.ELFCLASS64), byte(elf.ELFDATA2LSB), byte(elf.EV_CURRENT),
		byte(elf.ELFOSABI_NONE)}
	copy(header.Ident[:], ident)

	out := &bytes.Buffer{}
	require.NoError(t, binary.Write(out, binary.LittleEndian, header))
	for _, blob := range blobs {
		out.Write(blob)
	}
	require.NoError(t, binary.Write(out, binary.LittleEndian, sections))
	return out.Bytes()
}
