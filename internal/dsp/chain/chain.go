// Package chain implements the ordered audio processing chain. Modules
// process a block in place, strictly in insertion order; a module can be
// bypassed or disabled without being removed.
package chain

// Module is a named block processor. Implementations mutate the block in
// place and must be safe to call repeatedly from a single goroutine.
type Module interface {
	Name() string
	Process(block []float64)
}

type slot struct {
	mod      Module
	enabled  bool
	bypassed bool
}

// Handler owns the module chain. It is not goroutine-safe; all calls
// happen on the render goroutine via the event queue.
type Handler struct {
	chain []*slot
}

// NewHandler returns an empty chain.
func NewHandler() *Handler {
	return &Handler{}
}

// Add appends a module to the end of the chain.
func (h *Handler) Add(mod Module) {
	h.chain = append(h.chain, &slot{mod: mod, enabled: true})
}

// AddAt inserts a module at the given position. Out-of-range positions
// clamp to the chain ends.
func (h *Handler) AddAt(pos int, mod Module) {
	if pos < 0 {
		pos = 0
	}
	if pos >= len(h.chain) {
		h.Add(mod)
		return
	}
	s := &slot{mod: mod, enabled: true}
	h.chain = append(h.chain[:pos], append([]*slot{s}, h.chain[pos:]...)...)
}

// Remove drops every module with the given name.
func (h *Handler) Remove(name string) {
	kept := h.chain[:0]
	for _, s := range h.chain {
		if s.mod.Name() != name {
			kept = append(kept, s)
		}
	}
	h.chain = kept
}

// Get returns the first module with the given name, or nil.
func (h *Handler) Get(name string) Module {
	if s := h.slot(name); s != nil {
		return s.mod
	}
	return nil
}

// Names returns the module names in chain order.
func (h *Handler) Names() []string {
	names := make([]string, 0, len(h.chain))
	for _, s := range h.chain {
		names = append(names, s.mod.Name())
	}
	return names
}

// Len returns the number of modules in the chain.
func (h *Handler) Len() int { return len(h.chain) }

// Process runs the block through every active module in order.
func (h *Handler) Process(block []float64) {
	for _, s := range h.chain {
		if !s.enabled || s.bypassed {
			continue
		}
		s.mod.Process(block)
	}
}

// Bypass marks a module bypassed (or not). It reports whether the module exists.
func (h *Handler) Bypass(name string, bypassed bool) bool {
	if s := h.slot(name); s != nil {
		s.bypassed = bypassed
		return true
	}
	return false
}

// Enable switches a module on or off. It reports whether the module exists.
func (h *Handler) Enable(name string, enabled bool) bool {
	if s := h.slot(name); s != nil {
		s.enabled = enabled
		return true
	}
	return false
}

func (h *Handler) slot(name string) *slot {
	for _, s := range h.chain {
		if s.mod.Name() == name {
			return s
		}
	}
	return nil
}
