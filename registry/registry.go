package registry

import (
	"crypto/subtle"
	"sort"
	"strings"
)

// Registry maps device identifiers to their shared-secret tokens. It is
// built once at startup and never mutated afterwards, so concurrent reads
// from request handlers need no locking.
type Registry struct {
	tokens map[string]string
}

// Parse builds a Registry from a "id:token,id:token" configuration string.
// Members of each pair are trimmed; pairs without a colon are skipped.
// An empty result is legal and rejects every device.
func Parse(s string) *Registry {
	tokens := make(map[string]string)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, token, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		id = strings.TrimSpace(id)
		token = strings.TrimSpace(token)
		if id == "" {
			continue
		}
		tokens[id] = token
	}
	return &Registry{tokens: tokens}
}

// Lookup returns the token registered for a device.
func (r *Registry) Lookup(deviceID string) (string, bool) {
	token, ok := r.tokens[deviceID]
	return token, ok
}

// Authorize reports whether the claimed pair matches the registry. An
// unknown device and a wrong token are indistinguishable to the caller,
// and the comparison is constant time.
func (r *Registry) Authorize(deviceID, token string) bool {
	if deviceID == "" || token == "" {
		return false
	}
	want, ok := r.tokens[deviceID]
	if !ok {
		// Compare against the claim itself to keep timing uniform.
		subtle.ConstantTimeCompare([]byte(token), []byte(token))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}

// Devices returns the registered device identifiers, sorted.
func (r *Registry) Devices() []string {
	ids := make([]string, 0, len(r.tokens))
	for id := range r.tokens {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	return len(r.tokens)
}
