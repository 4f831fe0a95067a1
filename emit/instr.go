package emit

import (
	"github.com/wippyai/parcelgen/desc"
)

// Slot indexes Program.Locals.
type Slot int

// NoSlot marks an absent operand or destination.
const NoSlot Slot = -1

// Label is a forward branch target.
type Label int

// Local is a typed temporary or parameter.
type Local struct {
	Type  *desc.Type
	Name  string
	Param bool
}

// Op is an instruction opcode.
type Op uint8

const (
	OpConst     Op = iota // Dst = Value
	OpMove                // Dst = Args[0]
	OpRead                // Dst = Args[0].read<Stream>(Type)
	OpWrite               // Args[0].write<Stream>(Args[1:]...)
	OpBranch              // if Cond(Args[0]) goto Label
	OpJump                // goto Label
	OpMark                // Label:
	OpLoop                // for Args[0] = 0; Args[0] < Args[1]; Args[0]++ { Body }
	OpRange               // for Dst in Args[0] { Body }
	OpRangeMap            // for Dst, Dst2 in Args[0] { Body }
	OpNew                 // Dst = new Type using implementation Name
	OpConstruct           // Dst = Type{Fields[i]: Args[i]}
	OpMakeArray           // Dst = make(Type, Args[0])
	OpInvoke              // Dst = Method(Args...)
)

var opNames = [...]string{
	OpConst:     "const",
	OpMove:      "move",
	OpRead:      "read",
	OpWrite:     "write",
	OpBranch:    "branch",
	OpJump:      "jump",
	OpMark:      "mark",
	OpLoop:      "loop",
	OpRange:     "range",
	OpRangeMap:  "range.map",
	OpNew:       "new",
	OpConstruct: "construct",
	OpMakeArray: "make.array",
	OpInvoke:    "invoke",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Stream names a primitive container operation.
type Stream uint8

const (
	StreamInt32 Stream = iota
	StreamInt64
	StreamFloat32
	StreamFloat64
	StreamString
	StreamBoolArray
	StreamInt8Array
	StreamUint16Array
	StreamInt32Array
	StreamInt64Array
	StreamFloat32Array
	StreamFloat64Array
	StreamStringArray
	StreamBundle
	StreamSparseBoolArray
	StreamSparseArray
	StreamAggregate
	StreamAggregateArray
	StreamSerializable
)

var streamNames = [...]string{
	StreamInt32:           "int32",
	StreamInt64:           "int64",
	StreamFloat32:         "float32",
	StreamFloat64:         "float64",
	StreamString:          "string",
	StreamBoolArray:       "bool.array",
	StreamInt8Array:       "int8.array",
	StreamUint16Array:     "uint16.array",
	StreamInt32Array:      "int32.array",
	StreamInt64Array:      "int64.array",
	StreamFloat32Array:    "float32.array",
	StreamFloat64Array:    "float64.array",
	StreamStringArray:     "string.array",
	StreamBundle:          "bundle",
	StreamSparseBoolArray: "sparse.bool.array",
	StreamSparseArray:     "sparse.array",
	StreamAggregate:       "aggregate",
	StreamAggregateArray:  "aggregate.array",
	StreamSerializable:    "serializable",
}

func (s Stream) String() string {
	if int(s) < len(streamNames) {
		return streamNames[s]
	}
	return "unknown"
}

// Cond is a branch condition over a single slot.
type Cond uint8

const (
	CondZero    Cond = iota // 0 or false
	CondNonZero             // not 0 and not false
	CondNil                 // absent value
	CondNotNil
)

var condNames = [...]string{
	CondZero:    "zero",
	CondNonZero: "nonzero",
	CondNil:     "nil",
	CondNotNil:  "notnil",
}

func (c Cond) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return "unknown"
}

// Method is a capability invoked on values.
type Method uint8

const (
	MethodLen        Method = iota // Dst int32 = length of Args[0]
	MethodIndex                    // Dst = Args[0][Args[1]]
	MethodSetIndex                 // Args[0][Args[1]] = Args[2]
	MethodAdd                      // Args[0].add(Args[1])
	MethodPut                      // Args[0].put(Args[1], Args[2])
	MethodGetField                 // Dst = Args[0].Name
	MethodBox                      // Dst = box(Args[0])
	MethodUnbox                    // Dst = unbox(Args[0])
	MethodWiden                    // Dst int32 = int32(Args[0])
	MethodNarrow                   // Dst = Dst.Type(Args[0])
	MethodOrdinal                  // Dst int32 = Args[0].Ordinal()
	MethodEnumValue                // Dst = constant Args[0] of Type, Value constants
	MethodMillis                   // Dst int64 = Unix millis of Args[0]
	MethodFromMillis               // Dst = date from Unix millis Args[0]
	MethodShared                   // Dst = shared instance of adapter Type
	MethodFromParcel               // Dst = Args[0].FromParcel(Args[1])
	MethodToParcel                 // Args[0].ToParcel(Args[1], Args[2], Args[3])
)

var methodNames = [...]string{
	MethodLen:        "len",
	MethodIndex:      "index",
	MethodSetIndex:   "set.index",
	MethodAdd:        "add",
	MethodPut:        "put",
	MethodGetField:   "get.field",
	MethodBox:        "box",
	MethodUnbox:      "unbox",
	MethodWiden:      "widen",
	MethodNarrow:     "narrow",
	MethodOrdinal:    "ordinal",
	MethodEnumValue:  "enum.value",
	MethodMillis:     "millis",
	MethodFromMillis: "from.millis",
	MethodShared:     "shared",
	MethodFromParcel: "from.parcel",
	MethodToParcel:   "to.parcel",
}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return "unknown"
}

// Instr is one instruction. Only the fields relevant to Op are set.
type Instr struct {
	Value  any
	Type   *desc.Type
	Name   string
	Fields []string
	Args   []Slot
	Body   []Instr
	Dst    Slot
	Dst2   Slot
	Label  Label
	Op     Op
	Stream Stream
	Cond   Cond
	Method Method
}
