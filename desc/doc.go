// Package desc defines the normalized type descriptors the codec engine classifies.
//
// A Type is immutable and compared structurally. Five kinds exist:
//
//	Primitive       bool, int8, int16, uint16, int32, int64, float32, float64, string
//	Boxed           the nullable counterpart of a primitive, written *int32
//	Array           element descriptor plus dimension count, written [][]int32
//	Class           a named class, written example.com/model.User
//	Parameterized   a named generic with ordered arguments, written map<string, int32>
//
// Field and Aggregate describe the declarations a generator consumes. Field order in an
// Aggregate is declaration order and fixes the wire layout.
package desc
