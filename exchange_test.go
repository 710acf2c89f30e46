package dualscreen

import (
	"sync"
	"testing"

	"github.com/gogpu/dualscreen/pixel"
)

func TestFrameExchange_InitialState(t *testing.T) {
	ex := NewFrameExchange()
	f, fresh := ex.Latest()
	if fresh {
		t.Error("Latest() reported a fresh frame before any Publish")
	}
	if f == nil || f.Validate() != nil {
		t.Fatal("Latest() should return a valid blank frame")
	}
	if ex.Current() == f {
		t.Error("producer and consumer share a buffer")
	}
}

func TestFrameExchange_PublishLatest(t *testing.T) {
	ex := NewFrameExchange()

	w := ex.Current()
	w.SetLayer(0, 0, LayerPair{Top: 42})
	ex.Publish()

	if ex.Current() == w {
		t.Error("Current() returned the published buffer")
	}

	f, fresh := ex.Latest()
	if !fresh {
		t.Fatal("Latest() did not see the published frame")
	}
	if f != w || f.LayerAt(0, 0).Top != 42 || f.Index != 1 {
		t.Errorf("Latest() = frame %d with top %d, want frame 1 with top 42", f.Index, f.LayerAt(0, 0).Top)
	}

	again, fresh := ex.Latest()
	if fresh || again != f {
		t.Error("second Latest() should return the same frame, not fresh")
	}
}

func TestFrameExchange_DropsIntermediateFrames(t *testing.T) {
	ex := NewFrameExchange()
	for i := range 5 {
		ex.Current().SetLayer(0, 0, LayerPair{Top: 100 + pixel.LayerWord(i)})
		ex.Publish()
	}
	if ex.Published() != 5 {
		t.Errorf("Published() = %d, want 5", ex.Published())
	}

	f, fresh := ex.Latest()
	if !fresh || f.Index != 5 || f.LayerAt(0, 0).Top != 104 {
		t.Errorf("Latest() = frame %d top %d fresh %v, want frame 5 top 104", f.Index, f.LayerAt(0, 0).Top, fresh)
	}
}

func TestFrameExchange_BuffersStayDistinct(t *testing.T) {
	ex := NewFrameExchange()
	for range 20 {
		ex.Publish()
		read, _ := ex.Latest()
		if read == ex.Current() {
			t.Fatal("producer and consumer hold the same buffer")
		}
	}
}

// Run with -race: the producer writes only to Current, the consumer reads
// only what Latest returns.
func TestFrameExchange_Concurrent(t *testing.T) {
	ex := NewFrameExchange()
	const frames = 2000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := range frames {
			f := ex.Current()
			v := pixel.LayerWord(i + 1)
			f.Layers[0] = LayerPair{Top: v, Bottom: v}
			f.Layers[len(f.Layers)-1] = LayerPair{Top: v, Bottom: v}
			ex.Publish()
		}
	}()

	go func() {
		defer wg.Done()
		var last uint64
		for last < frames {
			f, fresh := ex.Latest()
			if !fresh {
				continue
			}
			if f.Index <= last {
				t.Errorf("frame index went from %d to %d", last, f.Index)
				return
			}
			last = f.Index
			first, end := f.Layers[0], f.Layers[len(f.Layers)-1]
			if first != end || uint64(first.Top) != f.Index {
				t.Errorf("torn frame %d: first %+v last %+v", f.Index, first, end)
				return
			}
		}
	}()

	wg.Wait()
}
