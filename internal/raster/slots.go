package raster

// Slots is an index-addressed sequence of optional rasters. An absent entry
// means the source at that index is still decoding or failed to decode.
type Slots struct {
	items []*Raster
}

// NewSlots creates n absent slots.
func NewSlots(n int) *Slots {
	if n < 0 {
		n = 0
	}
	return &Slots{items: make([]*Raster, n)}
}

// Len returns the number of slots, present or not.
func (s *Slots) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the raster at index i, if present.
func (s *Slots) At(i int) (*Raster, bool) {
	if s == nil || i < 0 || i >= len(s.items) || s.items[i] == nil {
		return nil, false
	}
	return s.items[i], true
}

// Set stores r at index i. It returns false when i is out of range.
func (s *Slots) Set(i int, r *Raster) bool {
	if s == nil || i < 0 || i >= len(s.items) {
		return false
	}
	s.items[i] = r
	return true
}

// Present returns the number of slots holding a raster.
func (s *Slots) Present() int {
	n := 0
	for _, r := range s.Rasters() {
		if r != nil {
			n++
		}
	}
	return n
}

// Widths returns the widths of present rasters in index order.
func (s *Slots) Widths() []int {
	var widths []int
	for _, r := range s.Rasters() {
		if r != nil {
			widths = append(widths, r.Width)
		}
	}
	return widths
}

// Rasters returns a copy of the slot contents; absent entries are nil.
func (s *Slots) Rasters() []*Raster {
	if s == nil {
		return nil
	}
	out := make([]*Raster, len(s.items))
	copy(out, s.items)
	return out
}
