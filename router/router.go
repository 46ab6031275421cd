// Package router implements the deterministic map from a Go record type to
// the backing collection name that stores every subtype sharing that
// type's polymorphic root, plus the discriminator registry used to decode a
// stored document back to its concrete Go type.
//
// Configuration is a value passed to New, never process-wide mutable
// state, so two routers in the same process can carry different
// prefix/suffix rules without interfering with each other.
package router

import (
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/tstore/logger"
	"github.com/forbearing/tstore/types"
	"github.com/stoewer/go-strcase"
)

// Options configures name-mapping rules. Exactly one matching prefix and one
// matching suffix are stripped from a type's simple name (first match
// wins); namespace prefixes/suffixes are stripped the same way from the
// type's Go package path before it is discarded (only the simple name
// contributes to the collection name).
type Options struct {
	IgnoredClassNamePrefixes []string
	IgnoredClassNameSuffixes []string
	IgnoredNamespacePrefixes []string
	IgnoredNamespaceSuffixes []string
}

// DefaultOptions strips the conventional "Data"/"Key" name suffixes.
func DefaultOptions() Options {
	return Options{IgnoredClassNameSuffixes: []string{"Data", "Key"}}
}

// entry records one registered polymorphic family.
type entry struct {
	collection string
	rootType   reflect.Type
	chain      []string // root -> ... -> this type, registered type's own chain
}

// Router maps record types to collection names and discriminators to Go
// types. One Router is shared by every store.Store the DataSource opens.
type Router struct {
	opts Options

	mu          sync.RWMutex
	byType      map[reflect.Type]*entry            // concrete Go type -> entry
	byName      map[string]*entry                  // discriminator leaf name -> entry
	collections map[string]reflect.Type            // collection name -> root Go type (for duplicate-root detection)
}

// New builds a Router with opts. A zero Options behaves like DefaultOptions
// only if the caller passes DefaultOptions() explicitly — New never injects
// defaults silently, so callers always get exactly the configuration they asked for.
func New(opts Options) *Router {
	return &Router{
		opts:        opts,
		byType:      make(map[reflect.Type]*entry),
		byName:      make(map[string]*entry),
		collections: make(map[string]reflect.Type),
	}
}

// Register associates a polymorphic family with its root type. root is a
// pointer to the zero value of the family's base Go type (the type whose
// collection every subtype shares); subtypes are registered individually via
// RegisterSubtype so the discriminator registry can decode them.
//
// Example:
//
//	rt.Register((*model.Quote)(nil))
//	rt.RegisterSubtype((*model.Quote)(nil), (*model.TickQuote)(nil))
func (rt *Router) Register(root any) (collection string, err error) {
	rootType := underlyingType(root)
	name := typeSimpleName(rootType)
	collection = rt.mapName(name)

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if existing, ok := rt.collections[collection]; ok && existing != rootType {
		return "", errors.Newf("router: collection %q already mapped to type %s, cannot also map %s", collection, existing, rootType)
	}
	rt.collections[collection] = rootType
	e := &entry{collection: collection, rootType: rootType, chain: []string{name}}
	rt.byType[rootType] = e
	rt.byName[name] = e
	logger.Router.Debugw("registered root type",
		"type", rt.qualifiedName(rootType), "collection", collection)
	return collection, nil
}

// qualifiedName strips the configured namespace prefix/suffix from the
// type's package path and joins it with the type's simple name, for
// diagnostics only — it never affects the collection name.
func (rt *Router) qualifiedName(t reflect.Type) string {
	pkg := stripPrefix(t.PkgPath(), rt.opts.IgnoredNamespacePrefixes)
	pkg = stripSuffix(pkg, rt.opts.IgnoredNamespaceSuffixes)
	if len(pkg) == 0 {
		return t.Name()
	}
	return pkg + "." + t.Name()
}

// RegisterSubtype associates a concrete subtype with the collection already
// registered for root, and records its discriminator chain (root name first,
// leaf name last) for hierarchical decode.
func (rt *Router) RegisterSubtype(root any, subtype any) error {
	rootType := underlyingType(root)
	subType := underlyingType(subtype)

	rt.mu.Lock()
	defer rt.mu.Unlock()
	rootEntry, ok := rt.byType[rootType]
	if !ok {
		return errors.Newf("router: root type %s is not registered", rootType)
	}
	leaf := typeSimpleName(subType)
	chain := append(append([]string{}, rootEntry.chain...), leaf)
	if subType == rootType {
		chain = rootEntry.chain
	}
	e := &entry{collection: rootEntry.collection, rootType: rootType, chain: chain}
	rt.byType[subType] = e
	rt.byName[leaf] = e
	return nil
}

// CollectionFor returns the collection name for a registered type (root or
// subtype). The second result is false if the type was never registered.
func (rt *Router) CollectionFor(v any) (string, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	e, ok := rt.byType[underlyingType(v)]
	if !ok {
		return "", false
	}
	return e.collection, true
}

// TypeChain returns the root-to-leaf discriminator chain for a registered type.
func (rt *Router) TypeChain(v any) ([]string, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	e, ok := rt.byType[underlyingType(v)]
	if !ok {
		return nil, false
	}
	return e.chain, true
}

// TypeFor looks up the Go type registered under a discriminator leaf name
// (the stored "_t" value, or its last element under the hierarchical
// convention). Used by the store's decode path.
func (rt *Router) TypeFor(discriminator string) (reflect.Type, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	e, ok := rt.byName[discriminator]
	if !ok {
		return nil, false
	}
	for t, te := range rt.byType {
		if te == e {
			return t, true
		}
	}
	return e.rootType, true
}

// AssignableFrom reports whether a record carrying the discriminator chain
// fromChain may be treated as an instance of toType — true exactly when
// toType's chain is a prefix of fromChain (toType is an ancestor of, or the
// same as, the stored type).
func (rt *Router) AssignableFrom(toType any, fromChain []string) bool {
	rt.mu.RLock()
	toEntry, ok := rt.byType[underlyingType(toType)]
	rt.mu.RUnlock()
	if !ok {
		return false
	}
	if len(toEntry.chain) > len(fromChain) {
		return false
	}
	for i, name := range toEntry.chain {
		if fromChain[i] != name {
			return false
		}
	}
	return true
}

// LeafNamesUnder returns every registered discriminator leaf name whose chain
// has chain as a prefix — the set of concrete types assignable to whatever
// type chain identifies. Used by store.Probe to emulate a typed view under
// the scalar discriminator convention, where a single document only carries
// its own leaf name and cannot be chain-matched directly.
func (rt *Router) LeafNamesUnder(chain []string) []string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	var names []string
	for name, e := range rt.byName {
		if len(e.chain) < len(chain) {
			continue
		}
		match := true
		for i, c := range chain {
			if e.chain[i] != c {
				match = false
				break
			}
		}
		if match {
			names = append(names, name)
		}
	}
	return names
}

func underlyingType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func typeSimpleName(t reflect.Type) string {
	return t.Name()
}

// mapName applies the configured prefix/suffix stripping (first match wins,
// exactly one of each) and returns the resulting collection name.
func (rt *Router) mapName(simpleName string) string {
	name := stripPrefix(simpleName, rt.opts.IgnoredClassNamePrefixes)
	name = stripSuffix(name, rt.opts.IgnoredClassNameSuffixes)
	return name
}

func stripPrefix(name string, prefixes []string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return strings.TrimPrefix(name, p)
		}
	}
	return name
}

func stripSuffix(name string, suffixes []string) string {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) && len(name) > len(s) {
			return strings.TrimSuffix(name, s)
		}
	}
	return name
}

// SnakeCase exposes strcase.SnakeCase normalization for diagnostics/logging
// (e.g. log field names), never for the stored collection name itself.
func SnakeCase(s string) string { return strcase.SnakeCase(s) }
