package launchargs

import (
	"sort"
	"strings"
)

// Platform identifies the device family an app is launched on.
type Platform string

const (
	PlatformUnknown Platform = ""
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

func (p Platform) String() string {
	if p == PlatformUnknown {
		return "unknown"
	}
	return string(p)
}

// ParsePlatform converts a string representation into the corresponding
// Platform. Returns PlatformUnknown for unrecognised values.
func ParsePlatform(value string) Platform {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "android":
		return PlatformAndroid
	case "ios":
		return PlatformIOS
	default:
		return PlatformUnknown
	}
}

// ReservedKeys lists, per platform, the argument names consumed by the
// platform's instrumentation layer before the app process sees them.
type ReservedKeys map[Platform][]string

// DefaultReservedKeys returns the option names the Android instrumentation
// runner interprets itself (see `am instrument` options). Platforms without
// an intercepting layer have no entry.
func DefaultReservedKeys() ReservedKeys {
	return ReservedKeys{
		PlatformAndroid: {
			"class",
			"package",
			"func",
			"unit",
			"size",
			"perf",
			"debug",
			"log",
			"emma",
			"coverageFile",
		},
	}
}

// Merge returns a copy of r where every platform listed in override has its
// set replaced by the override set.
func (r ReservedKeys) Merge(override ReservedKeys) ReservedKeys {
	out := make(ReservedKeys, len(r)+len(override))
	for platform, keys := range r {
		out[platform] = append([]string(nil), keys...)
	}
	for platform, keys := range override {
		out[platform] = append([]string(nil), keys...)
	}
	return out
}

// KeyFilter drops reserved keys for the active platform.
type KeyFilter struct {
	reserved map[Platform]map[string]struct{}
}

// NewKeyFilter builds a filter from reserved. Blank names are ignored.
func NewKeyFilter(reserved ReservedKeys) *KeyFilter {
	sets := make(map[Platform]map[string]struct{}, len(reserved))
	for platform, keys := range reserved {
		set := make(map[string]struct{}, len(keys))
		for _, key := range keys {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			set[key] = struct{}{}
		}
		if len(set) > 0 {
			sets[platform] = set
		}
	}
	return &KeyFilter{reserved: sets}
}

// DefaultKeyFilter returns a filter over DefaultReservedKeys.
func DefaultKeyFilter() *KeyFilter {
	return NewKeyFilter(DefaultReservedKeys())
}

// IsReserved reports whether key is reserved on platform.
func (f *KeyFilter) IsReserved(platform Platform, key string) bool {
	if f == nil {
		return false
	}
	_, ok := f.reserved[platform][key]
	return ok
}

// Reserved returns the sorted reserved names for platform.
func (f *KeyFilter) Reserved(platform Platform) []string {
	if f == nil {
		return nil
	}
	set := f.reserved[platform]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Filter returns the entries of args not reserved on platform along with the
// sorted names it dropped. Dropping is silent: the instrumentation layer
// would intercept those keys anyway. args is not modified; values in the
// returned map are shared with args.
func (f *KeyFilter) Filter(platform Platform, args Args) (Args, []string) {
	kept := make(Args, len(args))
	var dropped []string
	for key, value := range args {
		if f.IsReserved(platform, key) {
			dropped = append(dropped, key)
			continue
		}
		kept[key] = value
	}
	sort.Strings(dropped)
	return kept, dropped
}
