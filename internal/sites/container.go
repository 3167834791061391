package sites

import "sync"

// Container is the mount point sites are attached to, newest first.
// Methods are called with the manager lock held and must not call back into
// the Manager.
type Container interface {
	Mount(*Site)
	Unmount(id string)
}

// Board is the default in-memory Container.
type Board struct {
	mu    sync.RWMutex
	sites []*Site // newest first
}

func NewBoard() *Board { return &Board{} }

func (b *Board) Mount(s *Site) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sites = append([]*Site{s}, b.sites...)
}

func (b *Board) Unmount(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.sites {
		if s.ID() == id {
			b.sites = append(b.sites[:i:i], b.sites[i+1:]...)
			return
		}
	}
}

// Sites returns the mounted sites, newest first.
func (b *Board) Sites() []*Site {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Site, len(b.sites))
	copy(out, b.sites)
	return out
}

// Len returns the number of mounted sites.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sites)
}
