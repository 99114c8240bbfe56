package storage

import (
	"context"

	"tipjar/internal/model"
)

// Journal is a sink for tip attempt records. A record is written on every
// state transition; later writes for the same ID supersede earlier ones.
type Journal interface {
	RecordAttempt(ctx context.Context, record model.AttemptRecord) error
	Close() error
}

// Nop discards every record.
type Nop struct{}

func (Nop) RecordAttempt(context.Context, model.AttemptRecord) error { return nil }

func (Nop) Close() error { return nil }
