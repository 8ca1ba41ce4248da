package catalog

// Diff returns the entries of variant that are missing from base or whose
// value or template flag differ from the base entry. The result follows
// variant's order.
func Diff(base, variant *Catalog) *Catalog {
	out := New()
	for _, e := range variant.Entries() {
		if b, ok := base.Get(e.Key); ok && b == e {
			continue
		}
		out.Set(e)
	}
	return out
}
