// Package emit records codec procedures as abstract instruction programs.
//
// An Emitter owns one procedure. Codecs drive it through a fixed vocabulary:
// temporaries (Local), forward branches to labels (Branch, Jump, Mark), counted
// loops (Loop), iteration (Range, RangeMap), primitive stream operations (Read,
// Write), construction (New, MakeArray, Construct) and capability calls (Invoke).
//
// Labels are forward-only and local to the block that created them. Misuse does
// not panic; it is recorded as a sticky error returned by Program.
//
//	e := emit.New("example.User", emit.Decode)
//	p := e.Param("p", desc.Class(desc.ParcelClass))
//	id := e.Local("id", desc.Primitive(desc.Int64))
//	e.Read(id, p, emit.StreamInt64, nil)
//	...
//	prog, err := e.Program()
package emit
