package app

import (
	"img-compare/internal/raster"
)

// Files returns a copy of the file list.
func (s *Session) Files() []FileEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FileEntry, len(s.files))
	copy(out, s.files)
	return out
}

// Active returns the included sources in order.
func (s *Session) Active() []*raster.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*raster.Source(nil), s.active...)
}

// Add appends sources to the file list, included by default. Non-image
// sources are ignored.
func (s *Session) Add(sources ...*raster.Source) int {
	s.mu.Lock()
	added := 0
	for _, src := range sources {
		if src == nil || !src.IsImage() {
			continue
		}
		s.files = append(s.files, FileEntry{Source: src, Included: true})
		added++
	}
	if added > 0 {
		s.refreshLocked()
	}
	s.mu.Unlock()

	if added > 0 {
		s.afterFilesChanged()
	}
	return added
}

// ReplaceAll swaps the whole file list for sources, as an album import does.
// Sources that are not images are skipped. The previous rasters are evicted
// and a single redraw is requested.
func (s *Session) ReplaceAll(sources ...*raster.Source) int {
	s.mu.Lock()
	s.files = nil
	for _, src := range sources {
		if src == nil || !src.IsImage() {
			continue
		}
		s.files = append(s.files, FileEntry{Source: src, Included: true})
	}
	n := len(s.files)
	s.refreshLocked()
	s.mu.Unlock()

	s.afterFilesChanged()
	return n
}

// Remove drops the file at index i.
func (s *Session) Remove(i int) bool {
	s.mu.Lock()
	if i < 0 || i >= len(s.files) {
		s.mu.Unlock()
		return false
	}
	s.files = append(s.files[:i], s.files[i+1:]...)
	s.refreshLocked()
	s.mu.Unlock()

	s.afterFilesChanged()
	return true
}

// Clear drops every file.
func (s *Session) Clear() {
	s.mu.Lock()
	s.files = nil
	s.refreshLocked()
	s.mu.Unlock()

	s.afterFilesChanged()
}

// SetIncluded toggles whether the file at index i takes part in the
// composite.
func (s *Session) SetIncluded(i int, included bool) bool {
	s.mu.Lock()
	if i < 0 || i >= len(s.files) || s.files[i].Included == included {
		s.mu.Unlock()
		return false
	}
	s.files[i].Included = included
	s.refreshLocked()
	s.mu.Unlock()

	s.afterFilesChanged()
	return true
}

// Replace swaps every entry holding old for next, keeping its position and
// include flag. The new source is decoded afresh.
func (s *Session) Replace(old, next *raster.Source) bool {
	s.mu.Lock()
	found := false
	for i := range s.files {
		if s.files[i].Source == old {
			s.files[i].Source = next
			found = true
		}
	}
	if found {
		s.refreshLocked()
	}
	s.mu.Unlock()

	if found {
		s.afterFilesChanged()
	}
	return found
}

// refreshLocked rebuilds the active list, the slots and the separators
// after the file list changed. Caller holds s.mu.
func (s *Session) refreshLocked() {
	s.active = nil
	for _, f := range s.files {
		if f.Included {
			s.active = append(s.active, f.Source)
		}
	}
	s.cache.Retain(s.active)
	s.view.Separators.Reset(len(s.active))
	s.slots = s.cache.Load(s.active, s.merge)
	s.imagesChangedLocked()
}

// merge stores a late decode at index i if that index still holds src.
func (s *Session) merge(i int, src *raster.Source, r *raster.Raster) {
	s.mu.Lock()
	if i >= len(s.active) || s.active[i] != src {
		s.mu.Unlock()
		return
	}
	s.slots.Set(i, r)
	s.imagesChangedLocked()
	present := s.slots.Present()
	vp := s.view.Viewport
	s.mu.Unlock()

	s.scheduler.RequestRedraw()
	s.Emit(EventImagesChanged, present)
	s.Emit(EventViewChanged, vp)
}

// imagesChangedLocked refits when images are present and resets the view
// otherwise.
func (s *Session) imagesChangedLocked() {
	s.view.Widths = s.slots.Widths()
	if len(s.view.Widths) == 0 {
		s.view.Viewport.Reset()
		return
	}
	s.view.Viewport.Fit(s.view.Bounds.Width, s.view.Widths)
}

func (s *Session) afterFilesChanged() {
	s.mu.Lock()
	files := make([]FileEntry, len(s.files))
	copy(files, s.files)
	present := s.slots.Present()
	vp := s.view.Viewport
	s.mu.Unlock()

	s.scheduler.RequestRedraw()
	s.Emit(EventFilesChanged, files)
	s.Emit(EventImagesChanged, present)
	s.Emit(EventViewChanged, vp)
}
