package parcelgen

import (
	"context"
	stderrors "errors"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/parcelgen/codec"
	"github.com/wippyai/parcelgen/desc"
	"github.com/wippyai/parcelgen/emit"
	"github.com/wippyai/parcelgen/errors"
	"github.com/wippyai/parcelgen/hierarchy"
)

// Procedures are the two programs generated for one aggregate.
type Procedures struct {
	Decode    *emit.Program
	Encode    *emit.Program
	Aggregate desc.Aggregate
}

// String returns the decode and encode listings.
func (p *Procedures) String() string {
	return p.Decode.String() + "\n" + p.Encode.String()
}

// Generator emits procedures for aggregates. A Generator is safe for
// concurrent use once configured.
type Generator struct {
	oracle     hierarchy.Oracle
	classifier *codec.Classifier
	logger     *zap.Logger
	limit      int
}

// New returns a generator resolving types against oracle with the default
// designated implementations.
func New(oracle hierarchy.Oracle) *Generator {
	return &Generator{
		oracle:     oracle,
		classifier: codec.NewClassifier(oracle, codec.DefaultImplementations()),
		logger:     Logger(),
		limit:      runtime.GOMAXPROCS(0),
	}
}

// WithLogger sets the logger of this generator.
func (g *Generator) WithLogger(l *zap.Logger) *Generator {
	if l != nil {
		g.logger = l
	}
	return g
}

// WithDefaults sets the designated implementations of collections and maps.
func (g *Generator) WithDefaults(d codec.Defaults) *Generator {
	g.classifier = codec.NewClassifier(g.oracle, d)
	return g
}

// WithLimit bounds the number of aggregates generated concurrently by
// GenerateAll. Values below 1 mean GOMAXPROCS.
func (g *Generator) WithLimit(n int) *Generator {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	g.limit = n
	return g
}

// Classifier returns the classifier in use.
func (g *Generator) Classifier() *codec.Classifier { return g.classifier }

// Generate classifies every field of agg and emits its procedures. Any field
// that cannot be resolved rejects the whole aggregate.
func (g *Generator) Generate(ctx context.Context, agg desc.Aggregate) (*Procedures, error) {
	start := time.Now()
	emitGenerateStart(ctx, agg.Name, len(agg.Fields))

	procs, err := g.generate(agg)

	emitGenerateComplete(ctx, agg.Name, time.Since(start), err)
	if err != nil {
		g.logger.Error("aggregate rejected", zap.String("aggregate", agg.Name), zap.Error(err))
		return nil, err
	}
	g.logger.Info("aggregate generated",
		zap.String("aggregate", agg.Name),
		zap.Int("fields", len(agg.Fields)),
		zap.Duration("duration", time.Since(start)),
	)
	return procs, nil
}

func (g *Generator) generate(agg desc.Aggregate) (*Procedures, error) {
	if agg.Name == "" {
		return nil, errors.InvalidInput(errors.PhaseGenerate, "aggregate has no name")
	}

	codecs := make([]codec.Codec, len(agg.Fields))
	seen := make(map[string]bool, len(agg.Fields))
	for i, f := range agg.Fields {
		if f.Name == "" || seen[f.Name] {
			return nil, errors.New(errors.PhaseGenerate, errors.KindDuplicate).
				Owner(agg.Name).
				Path(f.Name).
				Detail("field names must be unique and non-empty").
				Build()
		}
		seen[f.Name] = true

		c, err := g.classifier.Resolve(agg.Name, f)
		if err != nil {
			return nil, err
		}
		g.logger.Debug("field classified",
			zap.String("aggregate", agg.Name),
			zap.String("field", f.Name),
			zap.Stringer("type", f.Type),
			zap.Stringer("category", c.Category()),
		)
		codecs[i] = c
	}

	decode, err := emitDecode(agg, codecs)
	if err != nil {
		return nil, err
	}
	encode, err := emitEncode(agg, codecs)
	if err != nil {
		return nil, err
	}
	return &Procedures{Aggregate: agg, Decode: decode, Encode: encode}, nil
}

func emitDecode(agg desc.Aggregate, codecs []codec.Codec) (*emit.Program, error) {
	e := emit.New(agg.Name, emit.Decode)
	p := e.Param("p", desc.Class(desc.ParcelClass))

	names := make([]string, len(agg.Fields))
	values := make([]emit.Slot, len(agg.Fields))
	for i, f := range agg.Fields {
		names[i] = f.Name
		values[i] = codecs[i].Decode(e, codec.NewContext(p, emit.NoSlot, emit.NoSlot, f.Type, f.Name))
	}

	t := desc.Class(agg.Name)
	obj := e.Local(localName(agg.Name), t)
	e.Construct(obj, t, names, values)
	e.Return(obj)
	return e.Program()
}

func emitEncode(agg desc.Aggregate, codecs []codec.Codec) (*emit.Program, error) {
	e := emit.New(agg.Name, emit.Encode)
	p := e.Param("p", desc.Class(desc.ParcelClass))
	v := e.Param("v", desc.Class(agg.Name))
	flags := e.Param("flags", desc.Primitive(desc.Int32))

	for i, f := range agg.Fields {
		fv := e.Local(f.Name, f.Type)
		e.GetField(fv, v, f.Name)
		codecs[i].Encode(e, codec.NewContext(p, fv, flags, f.Type, f.Name))
	}
	return e.Program()
}

func localName(class string) string {
	_, name := desc.SplitName(class)
	if name == "" {
		return "result"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// GenerateAll generates every aggregate with at most the configured number
// running at once. A rejected aggregate does not stop the others: the result
// holds nil at its index and the returned error joins every failure in input
// order. Cancelling ctx stops scheduling further aggregates.
func (g *Generator) GenerateAll(ctx context.Context, aggs []desc.Aggregate) ([]*Procedures, error) {
	start := time.Now()
	out := make([]*Procedures, len(aggs))
	errs := make([]error, len(aggs))

	var eg errgroup.Group
	eg.SetLimit(g.limit)
	for i := range aggs {
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			continue
		}
		eg.Go(func() error {
			out[i], errs[i] = g.Generate(ctx, aggs[i])
			return nil
		})
	}
	_ = eg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	emitBatchComplete(ctx, len(aggs), failed, time.Since(start))
	return out, stderrors.Join(errs...)
}
