package parcel

func writeArray[T any](p *Parcel, vs []T, write func(T)) {
	if vs == nil {
		p.WriteInt32(-1)
		return
	}
	p.WriteInt32(int32(len(vs)))
	for _, v := range vs {
		write(v)
	}
}

func readArray[T any](p *Parcel, what string, read func() T) []T {
	n, ok := p.count(what)
	if !ok {
		return nil
	}
	out := make([]T, n)
	for i := range out {
		out[i] = read()
		if p.err != nil {
			return nil
		}
	}
	return out
}

func (p *Parcel) WriteBoolArray(vs []bool)       { writeArray(p, vs, p.WriteBool) }
func (p *Parcel) WriteInt32Array(vs []int32)     { writeArray(p, vs, p.WriteInt32) }
func (p *Parcel) WriteInt64Array(vs []int64)     { writeArray(p, vs, p.WriteInt64) }
func (p *Parcel) WriteFloat32Array(vs []float32) { writeArray(p, vs, p.WriteFloat32) }
func (p *Parcel) WriteFloat64Array(vs []float64) { writeArray(p, vs, p.WriteFloat64) }
func (p *Parcel) WriteStringArray(vs []string)   { writeArray(p, vs, p.WriteString) }

// WriteUint16Array writes each element widened to a word.
func (p *Parcel) WriteUint16Array(vs []uint16) {
	writeArray(p, vs, func(v uint16) { p.WriteInt32(int32(v)) })
}

// WriteInt8Array writes a count followed by the raw bytes, padded.
func (p *Parcel) WriteInt8Array(vs []int8) {
	if vs == nil {
		p.WriteInt32(-1)
		return
	}
	b := make([]byte, len(vs))
	for i, v := range vs {
		b[i] = byte(v)
	}
	p.WriteInt32(int32(len(b)))
	p.w.WritePadded(b)
}

func (p *Parcel) ReadBoolArray() []bool       { return readArray(p, "bool array", p.ReadBool) }
func (p *Parcel) ReadInt32Array() []int32     { return readArray(p, "int32 array", p.ReadInt32) }
func (p *Parcel) ReadInt64Array() []int64     { return readArray(p, "int64 array", p.ReadInt64) }
func (p *Parcel) ReadFloat32Array() []float32 { return readArray(p, "float32 array", p.ReadFloat32) }
func (p *Parcel) ReadFloat64Array() []float64 { return readArray(p, "float64 array", p.ReadFloat64) }
func (p *Parcel) ReadStringArray() []string   { return readArray(p, "string array", p.ReadString) }

func (p *Parcel) ReadUint16Array() []uint16 {
	return readArray(p, "uint16 array", func() uint16 { return uint16(p.ReadInt32()) })
}

func (p *Parcel) ReadInt8Array() []int8 {
	n := int32(p.word("int8 array"))
	if p.err != nil || n < 0 {
		return nil
	}
	b := p.padded("int8 array", int(n))
	if p.err != nil {
		return nil
	}
	out := make([]int8, len(b))
	for i, v := range b {
		out[i] = int8(v)
	}
	return out
}
