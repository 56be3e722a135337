package policy

import (
	"fmt"
	"sync"
)

const (
	maxSeenIDs = 10000
	pruneCount = 1000
)

// Policy authorizes inbound messages against an optional chat allowlist
// and update_id deduplication.
type Policy struct {
	mu        sync.Mutex
	allowed   map[int64]bool
	seen      map[int64]bool
	seenOrder []int64
}

// New creates a Policy. An empty chatIDs list admits every chat.
func New(chatIDs []int64) *Policy {
	allowed := make(map[int64]bool, len(chatIDs))
	for _, id := range chatIDs {
		allowed[id] = true
	}
	return &Policy{
		allowed: allowed,
		seen:    make(map[int64]bool),
	}
}

// Authorize checks whether a message should be processed.
func (p *Policy) Authorize(chatID int64, updateID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.allowed) > 0 && !p.allowed[chatID] {
		return fmt.Errorf("unauthorized chat: %d", chatID)
	}

	if p.seen[updateID] {
		return fmt.Errorf("duplicate update: %d", updateID)
	}

	// Prune oldest entries if at capacity.
	if len(p.seen) >= maxSeenIDs {
		n := min(pruneCount, len(p.seenOrder))
		for _, id := range p.seenOrder[:n] {
			delete(p.seen, id)
		}
		p.seenOrder = p.seenOrder[n:]
	}

	p.seen[updateID] = true
	p.seenOrder = append(p.seenOrder, updateID)

	return nil
}
