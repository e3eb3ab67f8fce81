// Package layering merges keyed snapshots by precedence.
package layering

// Tombstone reports whether a value marks its key for removal.
type Tombstone func(value any) bool

// MergeLayers composes flat snapshots ordered from strongest to weakest. Each
// key takes the value of the strongest layer that defines it; values are
// replaced wholesale, never merged recursively. When the strongest definition
// of a key is a tombstone the key is left out of the result.
//
// The result is a fresh map holding deep copies, so callers may mutate it
// without affecting any layer.
func MergeLayers(tombstone Tombstone, layers ...map[string]any) map[string]any {
	size := 0
	for _, layer := range layers {
		size += len(layer)
	}
	merged := make(map[string]any, size)

	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i] {
			if tombstone != nil && tombstone(value) {
				delete(merged, key)
				continue
			}
			merged[key] = Clone(value)
		}
	}
	return merged
}

// Origin returns the index of the strongest layer that defines key, or -1
// when no layer does.
func Origin(key string, layers ...map[string]any) int {
	for i, layer := range layers {
		if _, ok := layer[key]; ok {
			return i
		}
	}
	return -1
}
