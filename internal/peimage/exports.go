package peimage

import "fmt"

// readExports parses the export directory (data directory index 0)
// into (name, ordinal, RVA) tuples, bounds-safe and capped against
// adversarial counts.
func readExports(data []byte, sections []Section, dirRVA uint32) ([]Export, error) {
	dirOffset, err := rvaToOffset(sections, dirRVA)
	if err != nil {
		return nil, err
	}

	base, err := readU32(data, dirOffset+16)
	if err != nil {
		return nil, err
	}
	numNames, err := readU32(data, dirOffset+24)
	if err != nil {
		return nil, err
	}
	numFunctions, err := readU32(data, dirOffset+20)
	if err != nil {
		return nil, err
	}
	addrFunctions, err := readU32(data, dirOffset+28)
	if err != nil {
		return nil, err
	}
	addrNames, err := readU32(data, dirOffset+32)
	if err != nil {
		return nil, err
	}
	addrOrdinals, err := readU32(data, dirOffset+36)
	if err != nil {
		return nil, err
	}

	if numNames > maxExports || numFunctions > maxExports {
		return nil, fmt.Errorf("%w: %d exported names", ErrSanityCap, numNames)
	}

	funcsOffset, err := rvaToOffset(sections, addrFunctions)
	if err != nil {
		return nil, err
	}
	namesOffset, err := rvaToOffset(sections, addrNames)
	if err != nil {
		return nil, err
	}
	ordinalsOffset, err := rvaToOffset(sections, addrOrdinals)
	if err != nil {
		return nil, err
	}

	exports := make([]Export, 0, numNames)
	for i := uint32(0); i < numNames && i < maxDirectoryWalk; i++ {
		nameRVA, err := readU32(data, namesOffset+int(i)*4)
		if err != nil {
			return nil, err
		}
		ordinal, err := readU16(data, ordinalsOffset+int(i)*2)
		if err != nil {
			return nil, err
		}
		if uint32(ordinal) >= numFunctions {
			continue
		}
		funcRVA, err := readU32(data, funcsOffset+int(ordinal)*4)
		if err != nil {
			return nil, err
		}
		nameOffset, err := rvaToOffset(sections, nameRVA)
		if err != nil {
			return nil, err
		}
		name, err := readCString(data, nameOffset)
		if err != nil {
			return nil, err
		}
		exports = append(exports, Export{
			Name:    name,
			Ordinal: ordinal + uint16(base),
			RVA:     funcRVA,
		})
	}
	return exports, nil
}
