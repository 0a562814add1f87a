package search

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/dsjohal14/listmatch/internal/catalog"
)

// ErrPattern means a product produced an uncompilable pattern, which only
// happens if escaping is broken.
var ErrPattern = errors.New("invalid product pattern")

// gap allows either a single space or exactly one extra token between
// manufacturer and model ("Canon EOS 5D"). A token excludes the Unicode
// spaces too (no-break space, ideographic space, ...), not only ASCII ones.
const gap = `( | ` + token + ` )`

const token = `[^\s\v\x{a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]+`

// Expression returns the pattern source for a product: position prefix,
// literal manufacturer, gap, literal model, rest of the line.
func Expression(p catalog.Product) string {
	return `(?im)^(\d+):` + regexp.QuoteMeta(p.Manufacturer) + gap + regexp.QuoteMeta(p.Model) + `[^\n]*$`
}

// Compile builds the case-insensitive multi-line matcher for a product
func Compile(p catalog.Product) (*regexp.Regexp, error) {
	re, err := regexp.Compile(Expression(p))
	if err != nil {
		return nil, fmt.Errorf("%w for %q: %v", ErrPattern, p.ProductName, err)
	}
	return re, nil
}
