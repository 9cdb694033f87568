package chain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BIP-44 path constants.
// Full path used here: m/44'/coin'/index'/0'
const (
	// HardenedKeyStart is the first hardened child index (2^31).
	HardenedKeyStart uint32 = 0x80000000

	// PurposeBIP44 is the BIP-44 purpose field (unhardened value).
	PurposeBIP44 uint32 = 44

	// ChangeExternal is the receiving branch.
	ChangeExternal uint32 = 0
)

var (
	ErrEmptyPath     = errors.New("empty derivation path")
	ErrMalformedPath = errors.New("malformed derivation path")
)

// DerivationPath is a walk down an HD key tree, one child index per level.
// Hardened levels have HardenedKeyStart added.
type DerivationPath []uint32

// ParsePath converts "m/44'/501'/0'/0'" style strings into a DerivationPath.
// Both ' and h/H mark hardened levels.
func ParsePath(s string) (DerivationPath, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyPath
	}
	elems := strings.Split(s, "/")
	if strings.TrimSpace(elems[0]) != "m" {
		return nil, fmt.Errorf("%w: must start with m", ErrMalformedPath)
	}
	elems = elems[1:]

	path := make(DerivationPath, 0, len(elems))
	for _, elem := range elems {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			return nil, fmt.Errorf("%w: empty level", ErrMalformedPath)
		}

		var offset uint32
		if last := elem[len(elem)-1]; last == '\'' || last == 'h' || last == 'H' {
			offset = HardenedKeyStart
			elem = elem[:len(elem)-1]
		}

		v, err := strconv.ParseUint(elem, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid level %q", ErrMalformedPath, elem)
		}
		if uint32(v) >= HardenedKeyStart {
			return nil, fmt.Errorf("%w: level %d must be in range [0, %d]", ErrMalformedPath, v, HardenedKeyStart-1)
		}
		path = append(path, offset+uint32(v))
	}
	return path, nil
}

// MustParsePath is ParsePath for constant paths; it panics on error.
func MustParsePath(s string) DerivationPath {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the canonical form, e.g. m/44'/60'/0'/0'.
func (p DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, idx := range p {
		b.WriteByte('/')
		if idx >= HardenedKeyStart {
			b.WriteString(strconv.FormatUint(uint64(idx-HardenedKeyStart), 10))
			b.WriteByte('\'')
			continue
		}
		b.WriteString(strconv.FormatUint(uint64(idx), 10))
	}
	return b.String()
}

// AllHardened reports whether every level is hardened.
func (p DerivationPath) AllHardened() bool {
	for _, idx := range p {
		if idx < HardenedKeyStart {
			return false
		}
	}
	return true
}
