package refdata

import (
	"strings"

	"github.com/fieldservice/reportgen/pkg/schema"
)

// ID is a typed foreign identifier into the reference data served by the
// backend. Records carry IDs until enrichment swaps in display names.
type ID string

// String returns the raw identifier.
func (id ID) String() string { return string(id) }

// Empty reports whether the identifier is unset.
func (id ID) Empty() bool { return strings.TrimSpace(string(id)) == "" }

// Entry is one reference-data row: a stable identifier, a display label and
// any extra display fields (serial number, contract, contact, part number).
type Entry struct {
	ID    ID
	Label string
	Meta  map[string]string
}

// Catalog holds one fetched reference list. The index is built once at
// construction so repeated lookups never rescan the list.
type Catalog struct {
	entries []Entry
	index   map[ID]int
}

// NewCatalog builds a catalog from fetched entries, keeping fetch order.
// Later duplicates of an ID are ignored.
func NewCatalog(entries []Entry) *Catalog {
	catalog := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[ID]int, len(entries)),
	}
	for _, entry := range entries {
		if entry.ID.Empty() {
			continue
		}
		if _, exists := catalog.index[entry.ID]; exists {
			continue
		}
		catalog.index[entry.ID] = len(catalog.entries)
		catalog.entries = append(catalog.entries, entry)
	}
	return catalog
}

// Lookup resolves an identifier.
func (c *Catalog) Lookup(id ID) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	idx, ok := c.index[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// Label resolves an identifier to its display label, falling back to the raw
// identifier so stale references still render as something.
func (c *Catalog) Label(id ID) string {
	if entry, ok := c.Lookup(id); ok {
		return entry.Label
	}
	return string(id)
}

// Meta returns one extra display field for an entry, or empty.
func (c *Catalog) Meta(id ID, key string) string {
	entry, ok := c.Lookup(id)
	if !ok || entry.Meta == nil {
		return ""
	}
	return entry.Meta[key]
}

// Options projects the catalog into selection choices in fetch order.
func (c *Catalog) Options() []schema.Option {
	if c == nil || len(c.entries) == 0 {
		return nil
	}
	options := make([]schema.Option, 0, len(c.entries))
	for _, entry := range c.entries {
		options = append(options, schema.Option{
			Value: string(entry.ID),
			Label: entry.Label,
		})
	}
	return options
}

// Len reports the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Set bundles the reference catalogs a service-report form needs. Catalogs
// may be fetched concurrently; a Set is only assembled once every fetch has
// completed.
type Set struct {
	Clients    *Catalog
	Equipment  *Catalog
	Parts      *Catalog
	Suppliers  *Catalog
	Procedures *Catalog
}
