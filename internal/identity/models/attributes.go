package models

// Attributes is an insertion-order-preserving string map with duplicate-free
// keys. One abstraction instead of a parallel key list and value map: the
// slice carries order, the map gives O(1) existence checks.
type Attributes struct {
	keys   []string
	values map[string]string
}

func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]string)}
}

// Set upserts the value for key. A new key is appended to the order; an
// existing key keeps its original position (last-write-wins value).
func (a *Attributes) Set(key, value string) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value for key, or the empty string when absent. Lookups
// mirror "missing value" rather than failing.
func (a *Attributes) Get(key string) string {
	return a.values[key]
}

// Has reports whether key was ever set.
func (a *Attributes) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Keys returns the keys in first-insertion order. The slice is a copy.
func (a *Attributes) Keys() []string {
	return append([]string{}, a.keys...)
}

// Len returns the number of distinct keys.
func (a *Attributes) Len() int {
	return len(a.keys)
}

// Clone returns an independent deep copy.
func (a *Attributes) Clone() *Attributes {
	clone := &Attributes{
		keys:   append([]string{}, a.keys...),
		values: make(map[string]string, len(a.values)),
	}
	for k, v := range a.values {
		clone.values[k] = v
	}
	return clone
}
