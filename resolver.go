package launchargs

import (
	"sort"

	"github.com/goliatone/go-launchargs/layering"
)

// Layer names, strongest first.
const (
	LayerOnSite   = "on-site"
	LayerOverlay  = "overlay"
	LayerBaseline = "baseline"
)

// Resolution is the outcome of merging the three argument layers.
type Resolution struct {
	// Args holds the resolved arguments with reserved keys removed.
	Args Args
	// Filtered lists, sorted, the reserved keys that were dropped.
	Filtered []string
	// Deleted lists, sorted, the keys suppressed by an overlay deletion
	// marker that no on-site argument re-supplied.
	Deleted []string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithKeyFilter replaces the default reserved key filter.
func WithKeyFilter(filter *KeyFilter) ResolverOption {
	return func(r *Resolver) {
		if filter != nil {
			r.filter = filter
		}
	}
}

// Resolver merges baseline, overlay and on-site arguments. Precedence is
// baseline < overlay < on-site, evaluated per key.
type Resolver struct {
	filter *KeyFilter
}

// NewResolver constructs a Resolver using DefaultKeyFilter unless a filter
// option is supplied.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.filter == nil {
		r.filter = DefaultKeyFilter()
	}
	return r
}

var defaultResolver = NewResolver()

// Resolve merges the layers with the default reserved key filter.
func Resolve(platform Platform, baseline, overlay, onSite Args) Args {
	return defaultResolver.Resolve(platform, baseline, overlay, onSite)
}

// Filter returns the reserved key filter used by r.
func (r *Resolver) Filter() *KeyFilter {
	if r == nil || r.filter == nil {
		return DefaultKeyFilter()
	}
	return r.filter
}

// Resolve returns the final argument set for platform. Inputs are never
// modified and the result shares no containers with them.
func (r *Resolver) Resolve(platform Platform, baseline, overlay, onSite Args) Args {
	return r.ResolveDetailed(platform, baseline, overlay, onSite).Args
}

// ResolveDetailed behaves like Resolve and also reports which keys were
// filtered or deleted.
func (r *Resolver) ResolveDetailed(platform Platform, baseline, overlay, onSite Args) Resolution {
	merged := layering.MergeLayers(IsDelete, onSite, overlay, baseline)
	kept, dropped := r.Filter().Filter(platform, merged)

	var deleted []string
	for key, value := range overlay {
		if !IsDelete(value) {
			continue
		}
		if v, ok := onSite[key]; ok && !IsDelete(v) {
			continue
		}
		deleted = append(deleted, key)
	}
	sort.Strings(deleted)

	return Resolution{
		Args:     kept,
		Filtered: dropped,
		Deleted:  deleted,
	}
}

// ResolveWithTrace resolves key and reports how each layer contributed to it.
// The boolean result reports whether key is present in the resolved set.
func (r *Resolver) ResolveWithTrace(platform Platform, baseline, overlay, onSite Args, key string) (any, bool, Trace) {
	trace := Trace{Key: key, Platform: platform}
	layers := []struct {
		name string
		args Args
	}{
		{LayerOnSite, onSite},
		{LayerOverlay, overlay},
		{LayerBaseline, baseline},
	}

	var (
		value    any
		resolved bool
		decided  bool
	)
	for _, layer := range layers {
		prov := Provenance{Layer: layer.name}
		raw, ok := layer.args[key]
		if ok {
			prov.Found = true
			if IsDelete(raw) {
				prov.Deleted = true
			} else {
				prov.Value = layering.Clone(raw)
			}
			if !decided {
				decided = true
				if !prov.Deleted {
					value = prov.Value
					resolved = true
				}
			}
		}
		trace.Layers = append(trace.Layers, prov)
	}

	if resolved && r.Filter().IsReserved(platform, key) {
		trace.Filtered = true
		value = nil
		resolved = false
	}
	trace.Found = resolved
	trace.Value = value
	return value, resolved, trace
}
