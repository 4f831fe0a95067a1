package interp

import (
	"github.com/wippyai/parcelgen/emit"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
	"github.com/wippyai/parcelgen/parcel"
)

// Adapter is the dynamic form of a user codec.
type Adapter interface {
	FromParcel(p *parcel.Parcel) any
	ToParcel(v any, p *parcel.Parcel, flags int32)
}

// AdapterFactory constructs a fresh adapter instance.
type AdapterFactory func() Adapter

// SerializableFactory returns a fresh pointer to decode a serializable
// class into.
type SerializableFactory func() any

// Machine runs decode and encode programs. Load programs and register
// adapters before use; after that a Machine is safe for concurrent use.
type Machine struct {
	oracle   hierarchy.Oracle
	registry *parcel.Registry
	decoders map[string]*emit.Program
	encoders map[string]*emit.Program
	adapters map[string]AdapterFactory
	shared   map[string]Adapter
	blobs    map[string]SerializableFactory
}

// New returns a machine resolving enum constants and subtype checks
// through oracle.
func New(oracle hierarchy.Oracle) *Machine {
	return &Machine{
		oracle:   oracle,
		registry: parcel.NewRegistry(),
		decoders: make(map[string]*emit.Program),
		encoders: make(map[string]*emit.Program),
		adapters: make(map[string]AdapterFactory),
		shared:   make(map[string]Adapter),
		blobs:    make(map[string]SerializableFactory),
	}
}

// Load installs programs keyed by their names. Decode programs also become
// the creators of their aggregate tag. Nil programs are skipped.
func (m *Machine) Load(programs ...*emit.Program) error {
	for _, prog := range programs {
		if prog == nil {
			continue
		}
		switch prog.Kind {
		case emit.Decode:
			if len(prog.Params) != 1 || prog.Result == emit.NoSlot {
				return errors.InvalidProgram(prog.Name, "decode procedure must take a parcel and return a value")
			}
			m.decoders[prog.Name] = prog
			class := prog.Name
			m.registry.Register(class, func(p *parcel.Parcel) parcel.Aggregate {
				obj, err := m.read(p, class)
				if err != nil {
					p.Fail(err)
					return nil
				}
				return bound{m: m, obj: obj}
			})
		case emit.Encode:
			if len(prog.Params) != 3 {
				return errors.InvalidProgram(prog.Name, "encode procedure must take a parcel, a value and flags")
			}
			m.encoders[prog.Name] = prog
		}
	}
	return nil
}

// RegisterAdapter sets the factory used for adapters constructed per use.
func (m *Machine) RegisterAdapter(class string, f AdapterFactory) {
	m.adapters[class] = f
}

// RegisterSharedAdapter sets the shared instance of an adapter class.
func (m *Machine) RegisterSharedAdapter(class string, a Adapter) {
	m.shared[class] = a
}

// RegisterSerializable sets the factory of values decoded for a
// serializable class. Encoding needs no registration.
func (m *Machine) RegisterSerializable(class string, f SerializableFactory) {
	m.blobs[class] = f
}

// Registry returns the creator registry of nested aggregates.
func (m *Machine) Registry() *parcel.Registry { return m.registry }

// Encode writes obj into a fresh parcel and returns its bytes.
func (m *Machine) Encode(obj *Object) ([]byte, error) {
	p := parcel.New()
	if err := m.Write(p, obj, 0); err != nil {
		return nil, err
	}
	return p.Bytes(), nil
}

// Decode reads an aggregate of class from data.
func (m *Machine) Decode(class string, data []byte) (*Object, error) {
	return m.Read(parcel.FromBytes(data), class)
}

// Write runs the encode program of obj's class. It installs the machine
// registry on p.
func (m *Machine) Write(p *parcel.Parcel, obj *Object, flags int32) error {
	if obj == nil {
		return errors.NilPointer(errors.PhaseEncode, nil, "aggregate")
	}
	p.WithRegistry(m.registry)
	if err := m.write(p, obj, flags); err != nil {
		return err
	}
	return p.Err()
}

// Read runs the decode program of class. It installs the machine registry
// on p.
func (m *Machine) Read(p *parcel.Parcel, class string) (*Object, error) {
	p.WithRegistry(m.registry)
	obj, err := m.read(p, class)
	if err != nil {
		return nil, err
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (m *Machine) write(p *parcel.Parcel, obj *Object, flags int32) error {
	prog, ok := m.encoders[obj.Class]
	if !ok {
		return errors.NotFound(errors.PhaseEncode, "encode program", obj.Class)
	}
	r := m.start(prog, p)
	defer r.release()
	r.slots[prog.Params[0]] = p
	r.slots[prog.Params[1]] = obj
	r.slots[prog.Params[2]] = flags
	return r.block(prog.Body)
}

func (m *Machine) read(p *parcel.Parcel, class string) (*Object, error) {
	prog, ok := m.decoders[class]
	if !ok {
		return nil, errors.NotFound(errors.PhaseDecode, "decode program", class)
	}
	r := m.start(prog, p)
	defer r.release()
	r.slots[prog.Params[0]] = p
	if err := r.block(prog.Body); err != nil {
		return nil, err
	}
	obj, ok := r.slots[prog.Result].(*Object)
	if !ok {
		return nil, r.mismatch(prog.Result, "*interp.Object")
	}
	return obj, nil
}

// bound carries a dynamic object through the parcel's tagged aggregate path.
type bound struct {
	m   *Machine
	obj *Object
}

func (b bound) ParcelTag() string { return b.obj.Class }

func (b bound) WriteToParcel(p *parcel.Parcel, flags int32) {
	if err := b.m.write(p, b.obj, flags); err != nil {
		p.Fail(err)
	}
}
