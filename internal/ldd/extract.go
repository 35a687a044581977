package ldd

import (
	"bytes"
	"debug/elf"

	"github.com/pkg/errors"
)

// DynamicInfo holds the raw strings extracted from a binary's dynamic
// linking metadata, in declaration order.
type DynamicInfo struct {
	// Needed lists the sonames of the shared libraries the binary
	// requires at load time (DT_NEEDED).
	Needed []string
	// RunPaths lists the library search path entries the binary
	// declares for itself. Both DT_RPATH and DT_RUNPATH entries end
	// up here; the distinction between them only matters to a real
	// loader resolving dlopen calls of indirect dependencies, not
	// for locating the libraries themselves.
	RunPaths []string
}

// ExtractDynamic reads the dependency metadata out of an ELF file. A
// file without a dynamic section (e.g. a static binary) yields an
// empty DynamicInfo and no error.
//
// The dynamic entries are walked manually instead of through
// File.DynString so that entries collected before a parse failure
// survive it: the returned DynamicInfo is still usable when the error
// is non-nil.
func ExtractDynamic(file *elf.File) (*DynamicInfo, error) {
	info := &DynamicInfo{}
	var firstErr error
	for _, section := range file.Sections {
		if section.Type != elf.SHT_DYNAMIC {
			continue
		}
		err := info.readDynamicSection(file, section)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return info, firstErr
}

func (info *DynamicInfo) readDynamicSection(file *elf.File, section *elf.Section) error {
	data, err := section.Data()
	if err != nil {
		return errors.Wrap(err, "failed to read dynamic section")
	}
	if int(section.Link) >= len(file.Sections) {
		return errors.Errorf("dynamic section links to invalid string table index %d", section.Link)
	}
	strtab, err := file.Sections[section.Link].Data()
	if err != nil {
		return errors.Wrap(err, "failed to read dynamic string table")
	}

	entrySize := 8
	if file.Class == elf.ELFCLASS64 {
		entrySize = 16
	}

	var badEntry error
	for offset := 0; offset+entrySize <= len(data); offset += entrySize {
		var tag elf.DynTag
		var value uint64
		if file.Class == elf.ELFCLASS64 {
			tag = elf.DynTag(file.ByteOrder.Uint64(data[offset:]))
			value = file.ByteOrder.Uint64(data[offset+8:])
		} else {
			tag = elf.DynTag(file.ByteOrder.Uint32(data[offset:]))
			value = uint64(file.ByteOrder.Uint32(data[offset+4:]))
		}

		if tag == elf.DT_NULL {
			break
		}

		switch tag {
		case elf.DT_NEEDED, elf.DT_RPATH, elf.DT_RUNPATH:
		default:
			continue
		}

		name, ok := getString(strtab, value)
		if !ok {
			if badEntry == nil {
				badEntry = errors.Errorf("dynamic entry %s references invalid string offset %d", tag, value)
			}
			continue
		}
		if tag == elf.DT_NEEDED {
			info.Needed = append(info.Needed, name)
		} else {
			info.RunPaths = append(info.RunPaths, name)
		}
	}
	return badEntry
}

func getString(strtab []byte, offset uint64) (string, bool) {
	if offset >= uint64(len(strtab)) {
		return "", false
	}
	end := bytes.IndexByte(strtab[offset:], 0)
	if end < 0 {
		return "", false
	}
	return string(strtab[offset : offset+uint64(end)]), true
}
