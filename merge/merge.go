// Package merge implements folding of parsed catalogs into a single
// catalog per localization directory.
package merge

import (
	"github.com/minios-linux/jsloc/catalog"
)

// Into folds src into dst.
// - Keys not yet in dst are appended in src order.
// - Keys already in dst take src's value and template flag but keep their position.
// Conflicts are not reported: the last file folded wins.
func Into(dst, src *catalog.Catalog) {
	for _, e := range src.Entries() {
		dst.Set(e)
	}
}

// Overrides returns the keys of src that already exist in dst with a
// different value or template flag, i.e. the keys Into would overwrite.
func Overrides(dst, src *catalog.Catalog) []string {
	var keys []string
	for _, e := range src.Entries() {
		if existing, ok := dst.Get(e.Key); ok && existing != e {
			keys = append(keys, e.Key)
		}
	}
	return keys
}
