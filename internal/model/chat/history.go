package chat

import "sync"

// History 是一个会话内按追加顺序排列的聊天记录，可并发使用。
// limit > 0 时超出部分从最早的问答对开始整对淘汰。
type History struct {
	mu    sync.Mutex
	turns []Turn
	limit int
}

// NewHistory 创建聊天记录，limit 为 0 表示不限制。奇数上限向上取整，保证能容纳完整的问答对。
func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	if limit%2 == 1 {
		limit++
	}
	return &History{turns: make([]Turn, 0, 16), limit: limit}
}

// Append adds turns to the end in one step, so a question and its answer stay adjacent.
func (h *History) Append(turns ...Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = append(h.turns, turns...)

	if h.limit == 0 || len(h.turns) <= h.limit {
		return
	}
	drop := len(h.turns) - h.limit
	if drop%2 == 1 {
		drop++
	}
	kept := make([]Turn, len(h.turns)-drop, cap(h.turns))
	copy(kept, h.turns[drop:])
	h.turns = kept
}

// All returns a copy of every turn in append order.
func (h *History) All() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	copied := make([]Turn, len(h.turns))
	copy(copied, h.turns)
	return copied
}

// Len 返回当前记录条数
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}
