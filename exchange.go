package dualscreen

import "sync/atomic"

// Triple buffer state word: the low two bits hold the index of the shared
// buffer, freshBit is set when the producer published it and the consumer
// has not taken it yet.
const (
	indexMask = 0b11
	freshBit  = 0b100
)

// FrameExchange hands frames from one producer goroutine (the emulation
// thread) to one consumer goroutine (the compositor) without locks. It
// owns three frames: one being written, one being read, and one shared.
//
// Neither side ever waits for the other. When the producer publishes
// faster than the consumer reads, intermediate frames are dropped and the
// consumer always sees the newest one.
type FrameExchange struct {
	frames [3]*Frame

	// state is the shared buffer index | freshBit.
	state atomic.Uint32

	// producer-owned
	write     uint32
	published uint64

	// consumer-owned
	read uint32
}

// NewFrameExchange allocates the three frames.
func NewFrameExchange() *FrameExchange {
	ex := &FrameExchange{
		frames: [3]*Frame{NewFrame(), NewFrame(), NewFrame()},
		write:  0,
		read:   2,
	}
	ex.state.Store(1)
	return ex
}

// Current returns the frame the producer writes into. It must only be
// called from the producer goroutine.
//
// After Publish the producer gets back an older buffer whose contents are
// stale. The producer is expected to overwrite every field of the frame.
func (ex *FrameExchange) Current() *Frame {
	return ex.frames[ex.write]
}

// Publish stamps the current frame with the next index and makes it
// available to the consumer. It must only be called from the producer
// goroutine.
func (ex *FrameExchange) Publish() {
	ex.published++
	ex.frames[ex.write].Index = ex.published
	prev := ex.state.Swap(ex.write | freshBit)
	ex.write = prev & indexMask
}

// Published returns the number of frames published so far. It must only
// be called from the producer goroutine.
func (ex *FrameExchange) Published() uint64 {
	return ex.published
}

// Latest returns the newest published frame and true when it was
// published since the previous call. Otherwise it returns the frame taken
// previously (a blank frame before the first Publish) and false. It must
// only be called from the consumer goroutine, and the returned frame is
// valid until the next call.
func (ex *FrameExchange) Latest() (*Frame, bool) {
	if ex.state.Load()&freshBit == 0 {
		return ex.frames[ex.read], false
	}
	prev := ex.state.Swap(ex.read)
	ex.read = prev & indexMask
	return ex.frames[ex.read], true
}
