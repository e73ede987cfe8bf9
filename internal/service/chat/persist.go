package chat

import (
	"sync"
	"time"

	"github.com/mustafizur/chat/backend/internal/model/chat"
)

// persister writes every contact's list after it changes, coalescing bursts
// of mutations into one write per contact per delay window. A zero delay
// writes synchronously.
type persister struct {
	delay    time.Duration
	sched    Scheduler
	snapshot func(contactID string) []chat.Message
	save     func(contactID string, messages []chat.Message)

	writeMu sync.Mutex // serializes writes so a stale snapshot never lands last

	mu    sync.Mutex
	dirty map[string]struct{}
}

func newPersister(delay time.Duration, sched Scheduler, snapshot func(string) []chat.Message, save func(string, []chat.Message)) *persister {
	return &persister{
		delay:    delay,
		sched:    sched,
		snapshot: snapshot,
		save:     save,
		dirty:    make(map[string]struct{}),
	}
}

// markDirty must be called after the mutation is visible to snapshot.
func (p *persister) markDirty(contactID string) {
	p.mu.Lock()
	if _, pending := p.dirty[contactID]; pending {
		p.mu.Unlock()
		return
	}
	p.dirty[contactID] = struct{}{}
	p.mu.Unlock()

	if p.delay <= 0 {
		p.write(contactID)
		return
	}
	p.sched.AfterFunc(p.delay, func() { p.write(contactID) })
}

func (p *persister) write(contactID string) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	if _, pending := p.dirty[contactID]; !pending {
		p.mu.Unlock()
		return
	}
	delete(p.dirty, contactID)
	p.mu.Unlock()

	p.save(contactID, p.snapshot(contactID))
}

// flush writes every pending list immediately.
func (p *persister) flush() {
	p.mu.Lock()
	ids := make([]string, 0, len(p.dirty))
	for id := range p.dirty {
		ids = append(ids, id)
	}
	p.mu.Unlock()

	for _, id := range ids {
		p.write(id)
	}
}

func (p *persister) pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dirty)
}
