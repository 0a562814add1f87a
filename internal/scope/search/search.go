// Package search matches products against the flattened listing index.
package search

import (
	"fmt"
	"strconv"

	"github.com/dsjohal14/listmatch/internal/catalog"
)

// Match is the set of listings judged to refer to one product
type Match struct {
	ProductName string            `json:"product_name"`
	Listings    []catalog.Listing `json:"listings"`
}

// Engine holds the listing corpus and its index for the duration of a run.
// It is read-only after construction and safe for concurrent Match calls.
type Engine struct {
	listings []catalog.Listing
	index    string
}

// NewEngine indexes the listings
func NewEngine(listings []catalog.Listing) *Engine {
	return &Engine{
		listings: listings,
		index:    BuildIndex(listings),
	}
}

// Count returns the number of indexed listings
func (e *Engine) Count() int {
	return len(e.listings)
}

// Match returns every listing whose index line satisfies the product pattern,
// in original listing order. Matches never overlap since each one runs to the end of its line.
func (e *Engine) Match(p catalog.Product) (Match, error) {
	re, err := Compile(p)
	if err != nil {
		return Match{}, err
	}

	m := Match{
		ProductName: p.ProductName,
		Listings:    make([]catalog.Listing, 0),
	}

	for _, loc := range re.FindAllStringSubmatchIndex(e.index, -1) {
		pos, err := strconv.Atoi(e.index[loc[2]:loc[3]])
		if err != nil || pos < 0 || pos >= len(e.listings) {
			return Match{}, fmt.Errorf("index position %q out of range", e.index[loc[2]:loc[3]])
		}
		m.Listings = append(m.Listings, e.listings[pos])
	}

	return m, nil
}
