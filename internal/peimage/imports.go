package peimage

import "fmt"

const importDescriptorSize = 20

// readImports walks the import directory (data directory index 1):
// an array of descriptors terminated by an all-zero entry, each
// naming a DLL and an Import Lookup Table to walk.
func readImports(data []byte, sections []Section, dirRVA uint32, isPE32Plus bool) ([]Import, error) {
	dirOffset, err := rvaToOffset(sections, dirRVA)
	if err != nil {
		return nil, err
	}

	wordSize := 4
	if isPE32Plus {
		wordSize = 8
	}

	var imports []Import
	for i := 0; i < maxDirectoryWalk; i++ {
		base := dirOffset + i*importDescriptorSize
		originalFirstThunk, err := readU32(data, base)
		if err != nil {
			return nil, err
		}
		timeDateStamp, err := readU32(data, base+4)
		if err != nil {
			return nil, err
		}
		nameRVA, err := readU32(data, base+12)
		if err != nil {
			return nil, err
		}
		firstThunk, err := readU32(data, base+16)
		if err != nil {
			return nil, err
		}

		if originalFirstThunk == 0 && timeDateStamp == 0 && nameRVA == 0 && firstThunk == 0 {
			break
		}

		dllOffset, err := rvaToOffset(sections, nameRVA)
		if err != nil {
			return nil, err
		}
		dllName, err := readCString(data, dllOffset)
		if err != nil {
			return nil, err
		}

		lookupRVA := originalFirstThunk
		if lookupRVA == 0 {
			lookupRVA = firstThunk
		}

		entries, err := readLookupTable(data, sections, lookupRVA, firstThunk, wordSize)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			e.DLL = dllName
			imports = append(imports, e)
			if len(imports) > maxImports {
				return nil, fmt.Errorf("%w: more than %d imports", ErrSanityCap, maxImports)
			}
		}
	}
	return imports, nil
}

// readLookupTable walks one DLL's Import Lookup Table and matches
// each entry against the Import Address Table at the same index, so
// every returned Import carries the RVA of its bound IAT slot.
func readLookupTable(data []byte, sections []Section, lookupRVA, iatRVA uint32, wordSize int) ([]Import, error) {
	lookupOffset, err := rvaToOffset(sections, lookupRVA)
	if err != nil {
		return nil, err
	}

	var entries []Import
	for i := 0; i < maxDirectoryWalk; i++ {
		off := lookupOffset + i*wordSize
		var word uint64
		if wordSize == 8 {
			word, err = readU64(data, off)
		} else {
			var w32 uint32
			w32, err = readU32(data, off)
			word = uint64(w32)
		}
		if err != nil {
			return nil, err
		}
		if word == 0 {
			break
		}

		ordinalFlag := uint64(1) << 31
		if wordSize == 8 {
			ordinalFlag = uint64(1) << 63
		}

		entry := Import{IATRVA: iatRVA + uint32(i*wordSize)}
		if word&ordinalFlag != 0 {
			entry.ByOrdinal = true
			entry.Ordinal = uint16(word & 0xFFFF)
		} else {
			hintNameRVA := uint32(word & 0x7FFFFFFF)
			hintOffset, err := rvaToOffset(sections, hintNameRVA)
			if err != nil {
				return nil, err
			}
			// Hint is a 2-byte field preceding the name; skip it.
			name, err := readCString(data, hintOffset+2)
			if err != nil {
				return nil, err
			}
			entry.Name = name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func rvaToOffset(sections []Section, rva uint32) (int, error) {
	for i := range sections {
		if sections[i].contains(rva) {
			return int(sections[i].RawOffset + (rva - sections[i].VirtualAddress)), nil
		}
	}
	return 0, fmt.Errorf("%w: rva 0x%x", ErrOutOfBoundsRVA, rva)
}
