package tariff

import (
	"context"
	"sync"
)

// DefaultCodes is the built-in subheading set used when no registry is configured
var DefaultCodes = []string{
	"010121", "020130", "030211", "040120", "070200", "080810", "090111",
	"220421", "300490", "330499", "392690", "420221", "482010", "490199",
	"610910", "620342", "640399", "690912", "711319", "730799", "732393",
	"820559", "841459", "847130", "847150", "847330", "850440", "850760",
	"851712", "851762", "852852", "854231", "870899", "871200", "900410",
	"901890", "902710", "940360", "950300", "960810",
}

// StaticRegistry is an in-memory code set
type StaticRegistry struct {
	mu    sync.RWMutex
	codes map[string]struct{}
}

// NewStaticRegistry creates a registry holding codes. Entries with fewer than
// six digits are ignored.
func NewStaticRegistry(codes ...string) *StaticRegistry {
	r := &StaticRegistry{codes: make(map[string]struct{}, len(codes))}
	r.Add(codes...)
	return r
}

// NewDefaultRegistry returns a registry seeded with DefaultCodes
func NewDefaultRegistry() *StaticRegistry {
	return NewStaticRegistry(DefaultCodes...)
}

// Add inserts codes
func (r *StaticRegistry) Add(codes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range codes {
		if digits := Normalize(c); len(digits) >= 6 {
			r.codes[digits] = struct{}{}
		}
	}
}

// Len returns the number of distinct codes
func (r *StaticRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

func (r *StaticRegistry) Contains(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range candidates(code) {
		if _, ok := r.codes[c]; ok {
			return true, nil
		}
	}
	return false, nil
}
