package parcelgen

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for generation events.
var (
	SignalGenerateStart    = capitan.NewSignal("parcelgen.generate.start", "Aggregate generation beginning")
	SignalGenerateComplete = capitan.NewSignal("parcelgen.generate.complete", "Aggregate generation finished")
	SignalBatchComplete    = capitan.NewSignal("parcelgen.batch.complete", "All aggregates processed")
)

// Keys for typed event data.
var (
	KeyAggregate = capitan.NewStringKey("aggregate")
	KeyFields    = capitan.NewIntKey("fields")
	KeyCount     = capitan.NewIntKey("count")
	KeyFailed    = capitan.NewIntKey("failed")
	KeyDuration  = capitan.NewDurationKey("duration")
	KeyError     = capitan.NewErrorKey("error")
)

func emitGenerateStart(ctx context.Context, aggregate string, fields int) {
	capitan.Emit(ctx, SignalGenerateStart,
		KeyAggregate.Field(aggregate),
		KeyFields.Field(fields),
	)
}

func emitGenerateComplete(ctx context.Context, aggregate string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyAggregate.Field(aggregate),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalGenerateComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalGenerateComplete, fields...)
	}
}

func emitBatchComplete(ctx context.Context, count, failed int, duration time.Duration) {
	capitan.Emit(ctx, SignalBatchComplete,
		KeyCount.Field(count),
		KeyFailed.Field(failed),
		KeyDuration.Field(duration),
	)
}
