package server

import (
	"fmt"
	"sync"

	"github.com/ironsheep/image-strip-mcp/internal/crop"
	"github.com/ironsheep/image-strip-mcp/internal/imaging"
)

// session is the state of the current selection: the picked images in
// display order and the crop region measured for each of them.
//
// The image list and the region store are only ever replaced together, so
// a region can never refer to an image from an earlier selection.
type session struct {
	mu      sync.Mutex
	sources []*imaging.Source
	regions *crop.Store
}

func newSession() *session {
	return &session{regions: crop.NewStore()}
}

// replace installs a new selection, drops every region of the old one and
// returns the sources it replaced.
func (s *session) replace(sources []*imaging.Source) []*imaging.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.sources
	s.sources = sources
	s.regions.Clear()
	return previous
}

// source returns the image at index. The caller must hold s.mu.
func (s *session) source(index int) (*imaging.Source, error) {
	if len(s.sources) == 0 {
		return nil, fmt.Errorf("no images selected")
	}
	if index < 0 || index >= len(s.sources) {
		return nil, fmt.Errorf("index %d out of range: %d images selected", index, len(s.sources))
	}
	return s.sources[index], nil
}

// region returns the measured region at index. The caller must hold s.mu.
func (s *session) region(index int) (*imaging.Source, *crop.Region, error) {
	src, err := s.source(index)
	if err != nil {
		return nil, nil, err
	}
	r, ok := s.regions.Get(index)
	if !ok {
		return nil, nil, fmt.Errorf("image %d not yet measured: call strip_layout first", index)
	}
	return src, r, nil
}
