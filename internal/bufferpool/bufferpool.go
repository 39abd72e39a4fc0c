// Package bufferpool caches a bounded number of resident page frames,
// providing pinned access and a "toss immediate" eviction policy: the
// first unpinned frame encountered during a scan is evicted.
package bufferpool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hnakae/lstore/internal/page"
	"github.com/hnakae/lstore/internal/pagestore"
)

// ErrPoolExhausted is returned when every resident frame is pinned and a
// new page must be brought in. Every engine code path unpins before
// returning, so this indicates a programming error (spec §4.3).
var ErrPoolExhausted = errors.New("bufferpool: exhausted, all frames pinned")

// Key identifies a page uniquely across the whole store.
type Key struct {
	Table  string
	IsBase bool
	Col    int
	Idx    int
}

func (k Key) path(store *pagestore.Store) string {
	return store.PagePath(k.Table, k.IsBase, k.Col, k.Idx)
}

// Frame wraps a Page with buffer-pool bookkeeping.
type Frame struct {
	Key      Key
	Page     *page.Page
	pinCount int
	dirty    bool
	lastUsed int64
}

// Dirty reports whether the frame's page differs from the on-disk copy.
func (f *Frame) Dirty() bool { return f.dirty }

// PinCount reports the current pin count.
func (f *Frame) PinCount() int { return f.pinCount }

// Pool is a bounded cache of resident page frames.
type Pool struct {
	mu       sync.Mutex
	store    *pagestore.Store
	maxPages int
	frames   map[Key]*Frame
	// order preserves insertion/residency iteration order for the
	// toss-immediate scan, mirroring the original's OrderedDict.
	order []Key
	clock int64
}

// New returns a buffer pool of the given capacity backed by store.
func New(store *pagestore.Store, maxPages int) *Pool {
	if maxPages <= 0 {
		maxPages = 128
	}
	return &Pool{
		store:    store,
		maxPages: maxPages,
		frames:   make(map[Key]*Frame, maxPages),
	}
}

func (p *Pool) tick() int64 {
	p.clock++
	return p.clock
}

// GetPage returns a pinned frame for the given page identity. If the frame
// is already resident its pin count is incremented. Otherwise it is
// fetched from the page store (or created empty if createIfMissing and the
// file is absent) after evicting room if the pool is at capacity.
//
// Returns (nil, nil) when the page does not exist and createIfMissing is
// false — a normal "none" outcome, not an error.
func (p *Pool) GetPage(table string, isBase bool, col, idx int, createIfMissing bool) (*Frame, error) {
	key := Key{Table: table, IsBase: isBase, Col: col, Idx: idx}

	p.mu.Lock()
	defer p.mu.Unlock()

	if f, ok := p.frames[key]; ok {
		f.pinCount++
		f.lastUsed = p.tick()
		return f, nil
	}

	if len(p.frames) >= p.maxPages {
		if err := p.evictOneLocked(); err != nil {
			return nil, err
		}
	}

	path := key.path(p.store)
	raw, err := p.store.ReadPageBytes(path)
	var pg *page.Page
	switch {
	case err == nil:
		pg, err = page.FromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("bufferpool: decode %s: %w", path, err)
		}
	case errors.Is(err, pagestore.ErrAbsent):
		if !createIfMissing {
			return nil, nil
		}
		pg = page.New()
	default:
		return nil, err
	}

	f := &Frame{Key: key, Page: pg, pinCount: 1, lastUsed: p.tick()}
	p.frames[key] = f
	p.order = append(p.order, key)
	return f, nil
}

// MarkDirty flags a frame as needing a flush before eviction.
func (p *Pool) MarkDirty(f *Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f.dirty = true
	f.lastUsed = p.tick()
}

// Unpin decrements a frame's pin count, saturating at zero.
func (p *Pool) Unpin(f *Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f.pinCount > 0 {
		f.pinCount--
	}
	f.lastUsed = p.tick()
}

// FlushAll writes every dirty resident frame back to the page store and
// clears their dirty bits. It does not evict.
func (p *Pool) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, key := range p.order {
		f, ok := p.frames[key]
		if !ok || !f.dirty {
			continue
		}
		if err := p.flushLocked(f); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) flushLocked(f *Frame) error {
	path := f.Key.path(p.store)
	if err := p.store.WritePageBytes(path, f.Page.ToBytes()); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

// evictOneLocked scans resident frames in iteration order and evicts the
// first unpinned one (Toss Immediate), flushing it first if dirty.
func (p *Pool) evictOneLocked() error {
	for i, key := range p.order {
		f, ok := p.frames[key]
		if !ok {
			continue
		}
		if f.pinCount != 0 {
			continue
		}
		if f.dirty {
			if err := p.flushLocked(f); err != nil {
				return err
			}
		}
		delete(p.frames, key)
		p.order = append(p.order[:i:i], p.order[i+1:]...)
		return nil
	}
	return ErrPoolExhausted
}

// Resident reports how many frames are currently cached, for diagnostics.
func (p *Pool) Resident() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}
