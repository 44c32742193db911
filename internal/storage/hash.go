package storage

import "math/rand"

// Hash is a field/value map backing the HASH type. Go's built-in map
// already gives O(1) field access, so unlike ZSet there's no secondary
// index to maintain here.
type Hash struct {
	entries map[string]string
}

// NewHash creates a new empty hash.
func NewHash() *Hash {
	return &Hash{entries: make(map[string]string)}
}

// Clone deep-copies the hash for copy-on-write snapshotting.
func (h *Hash) Clone() *Hash {
	if h == nil || len(h.entries) == 0 {
		return NewHash()
	}
	out := &Hash{entries: make(map[string]string, len(h.entries))}
	for field, value := range h.entries {
		out.entries[field] = value
	}
	return out
}

// Set assigns field = value, reporting whether field is new.
func (h *Hash) Set(field, value string) bool {
	_, exists := h.entries[field]
	h.entries[field] = value
	return !exists
}

// Get returns field's value.
func (h *Hash) Get(field string) (string, bool) {
	value, exists := h.entries[field]
	return value, exists
}

// Delete removes field, reporting whether it existed.
func (h *Hash) Delete(field string) bool {
	_, exists := h.entries[field]
	delete(h.entries, field)
	return exists
}

// Exists reports whether field is set.
func (h *Hash) Exists(field string) bool {
	_, exists := h.entries[field]
	return exists
}

// Len reports the field count.
func (h *Hash) Len() int {
	return len(h.entries)
}

// Keys returns every field name.
func (h *Hash) Keys() []string {
	out := make([]string, 0, len(h.entries))
	for field := range h.entries {
		out = append(out, field)
	}
	return out
}

// Values returns every field's value.
func (h *Hash) Values() []string {
	out := make([]string, 0, len(h.entries))
	for _, value := range h.entries {
		out = append(out, value)
	}
	return out
}

// GetAll returns the hash flattened to [field1, value1, field2, value2, ...].
func (h *Hash) GetAll() []string {
	out := make([]string, 0, len(h.entries)*2)
	for field, value := range h.entries {
		out = append(out, field, value)
	}
	return out
}

// SetNX sets field only if absent, reporting whether it set.
func (h *Hash) SetNX(field, value string) bool {
	if _, exists := h.entries[field]; exists {
		return false
	}
	h.entries[field] = value
	return true
}

// RandomFields samples count distinct fields uniformly at random, backing
// HRANDFIELD's positive-count form. count is capped at Len.
func (h *Hash) RandomFields(count int) []string {
	n := len(h.entries)
	if n == 0 || count <= 0 {
		return nil
	}
	if count > n {
		count = n
	}
	all := h.Keys()
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:count]
}

// RandomFieldsWithRepeats samples count fields uniformly at random,
// allowing repeats, backing HRANDFIELD's negative-count form.
func (h *Hash) RandomFieldsWithRepeats(count int) []string {
	n := len(h.entries)
	if n == 0 || count <= 0 {
		return nil
	}
	all := h.Keys()
	out := make([]string, count)
	for i := range out {
		out[i] = all[rand.Intn(n)]
	}
	return out
}
