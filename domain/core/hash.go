package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// BundleHash fingerprints an imported dataset so re-imports of identical
// workbooks can be recognized from logs.
type BundleHash Hash

func (h BundleHash) String() string { return Hash(h).String() }

// ComputeBundleHash derives a stable fingerprint from the country/indicator
// coverage of a bundle. Map iteration order is normalized by sorting.
func ComputeBundleHash(coverage map[CountryCode][]IndicatorKey) BundleHash {
	countries := make([]string, 0, len(coverage))
	for c := range coverage {
		countries = append(countries, c.String())
	}
	sort.Strings(countries)

	var data strings.Builder
	for _, c := range countries {
		keys := make([]string, 0, len(coverage[CountryCode(c)]))
		for _, k := range coverage[CountryCode(c)] {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		fmt.Fprintf(&data, "%s:%s;", c, strings.Join(keys, ","))
	}
	return BundleHash(NewHash([]byte(data.String())))
}
