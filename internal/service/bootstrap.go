package service

import (
	"context"

	"todo/internal/store"
)

// BootstrapKey is the settings key of the one-time import flag.
const BootstrapKey = "has_imported_remote"

// BootstrapState owns the persisted "has imported from remote source" flag.
type BootstrapState struct {
	settings store.Settings
}

// NewBootstrapState creates a BootstrapState backed by settings.
func NewBootstrapState(settings store.Settings) *BootstrapState {
	return &BootstrapState{settings: settings}
}

// Done reports whether the one-time import already succeeded.
func (b *BootstrapState) Done(ctx context.Context) (bool, error) {
	return b.settings.Bool(ctx, BootstrapKey)
}

// MarkDone records that the one-time import succeeded.
func (b *BootstrapState) MarkDone(ctx context.Context) error {
	return b.settings.SetBool(ctx, BootstrapKey, true)
}

