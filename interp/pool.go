package interp

import "sync"

const (
	// Frames above this size are not returned to the pool.
	poolMaxSlots  = 1024
	poolInitSlots = 32
)

var framePool = sync.Pool{
	New: func() any {
		slots := make([]any, 0, poolInitSlots)
		return &slots
	},
}

// getFrame returns a cleared frame of n slots.
func getFrame(n int) *[]any {
	f := framePool.Get().(*[]any)
	if cap(*f) < n {
		*f = make([]any, n)
		return f
	}
	*f = (*f)[:n]
	clear(*f)
	return f
}

func putFrame(f *[]any) {
	if f == nil || cap(*f) > poolMaxSlots {
		return
	}
	clear(*f)
	*f = (*f)[:0]
	framePool.Put(f)
}
