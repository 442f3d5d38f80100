package identity

import "strings"

// MatchKind reports how a lookup was resolved.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchFuzzy
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

type resolverKey struct {
	scheme string
	folio  string
}

type resolverEntry[T any] struct {
	scheme string
	value  T
}

// Resolver joins records across exports. Lookup tries the normalized scheme
// with the full folio, then with the base folio, and finally the fuzzy
// comparator over entries sharing the base folio. Entries under a different
// base folio are never considered. The first entry added for a key wins.
type Resolver[T any] struct {
	cmp     Comparator
	full    map[resolverKey]int
	base    map[resolverKey]int
	byFolio map[string][]int
	entries []resolverEntry[T]
}

// NewResolver creates a Resolver. A nil comparator disables the fuzzy stage.
func NewResolver[T any](cmp Comparator) *Resolver[T] {
	return &Resolver[T]{
		cmp:     cmp,
		full:    make(map[resolverKey]int),
		base:    make(map[resolverKey]int),
		byFolio: make(map[string][]int),
	}
}

// Add registers v under the scheme and folio it was reported with.
func (r *Resolver[T]) Add(scheme, folio string, v T) {
	key := NormalizeScheme(scheme)
	baseFolio := BaseFolio(folio)
	i := len(r.entries)
	r.entries = append(r.entries, resolverEntry[T]{scheme: scheme, value: v})

	fk := resolverKey{key, strings.TrimSpace(folio)}
	if _, ok := r.full[fk]; !ok {
		r.full[fk] = i
	}
	bk := resolverKey{key, baseFolio}
	if _, ok := r.base[bk]; !ok {
		r.base[bk] = i
	}
	r.byFolio[baseFolio] = append(r.byFolio[baseFolio], i)
}

// Len returns the number of registered entries.
func (r *Resolver[T]) Len() int {
	return len(r.entries)
}

// Lookup resolves scheme and folio to a registered value.
func (r *Resolver[T]) Lookup(scheme, folio string) (T, MatchKind) {
	key := NormalizeScheme(scheme)
	baseFolio := BaseFolio(folio)

	if i, ok := r.full[resolverKey{key, strings.TrimSpace(folio)}]; ok {
		return r.entries[i].value, MatchExact
	}
	if i, ok := r.base[resolverKey{key, baseFolio}]; ok {
		return r.entries[i].value, MatchExact
	}
	if r.cmp != nil {
		for _, i := range r.byFolio[baseFolio] {
			if r.cmp.Match(scheme, r.entries[i].scheme) {
				return r.entries[i].value, MatchFuzzy
			}
		}
	}

	var zero T
	return zero, MatchNone
}
