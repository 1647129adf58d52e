package emu

import "sync"

// Shared serialises access to a Machine for frontends that deliver input on
// a different goroutine from the one running frames.
type Shared struct {
	mu sync.Mutex
	m  *Machine
}

func NewShared(m *Machine) *Shared { return &Shared{m: m} }

func (s *Shared) Frame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Frame()
}

// Image copies the current frame into dst, growing it if needed, and returns
// it. The copy keeps the caller off the machine's buffer once the lock is
// released.
func (s *Shared) Image(dst []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := s.m.Image()
	if cap(dst) < len(img) {
		dst = make([]byte, len(img))
	}
	dst = dst[:len(img)]
	copy(dst, img)
	return dst
}

func (s *Shared) KeyDown(k Key) {
	s.mu.Lock()
	s.m.KeyDown(k)
	s.mu.Unlock()
}

func (s *Shared) KeyUp(k Key) {
	s.mu.Lock()
	s.m.KeyUp(k)
	s.mu.Unlock()
}

func (s *Shared) SetButtons(b Buttons) {
	s.mu.Lock()
	s.m.SetButtons(b)
	s.mu.Unlock()
}

// Do runs fn with exclusive access to the machine.
func (s *Shared) Do(fn func(m *Machine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.m)
}
