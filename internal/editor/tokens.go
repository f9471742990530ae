package editor

import "sync"

type op int

const (
	opSave op = iota
	opParse
	opCoverage
	opCount
)

// tokens hands out one increasing sequence per kind of remote call. Only a
// response carrying the latest token of its kind may be applied.
type tokens struct {
	mu  sync.Mutex
	seq [opCount]uint64
}

func (t *tokens) next(o op) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq[o]++
	return t.seq[o]
}

func (t *tokens) current(o op, token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq[o] == token
}
