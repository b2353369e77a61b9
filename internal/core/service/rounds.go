package service

import "sync/atomic"

// rounds is the generation counter of an aggregator. A round's result may be
// applied only while its generation is still the latest one handed out.
type rounds struct {
	counter atomic.Uint64
}

func (r *rounds) start() uint64 { return r.counter.Add(1) }

func (r *rounds) latest(g uint64) bool { return r.counter.Load() == g }
