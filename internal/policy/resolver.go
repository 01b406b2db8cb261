// Package policy resolves effective user preferences for fields and
// holds the crop tables shared by the decision agents.
package policy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/store"
)

// Resolver looks up the preferences that govern a field by walking
// field -> farm -> owner -> stored preferences.
type Resolver struct {
	store store.Store
}

// NewResolver builds a Resolver backed by the given store.
func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// ForUser returns the user's stored preferences, or the compiled
// defaults with ok=false when the user never saved any.
func (r *Resolver) ForUser(ctx context.Context, userID uuid.UUID) (model.UserPreferences, bool, error) {
	prefs, err := r.store.GetPreferences(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		def := model.DefaultPreferences()
		def.UserID = userID
		return def, false, nil
	}
	if err != nil {
		return model.UserPreferences{}, false, eris.Wrap(err, "policy: load preferences")
	}
	return *prefs, true, nil
}

// ForField resolves the preferences governing a field. Any break in
// the ownership chain falls back to defaults rather than failing the
// caller's decision.
func (r *Resolver) ForField(ctx context.Context, fieldID uuid.UUID) (model.UserPreferences, bool, error) {
	field, err := r.store.GetField(ctx, fieldID)
	if err != nil {
		return model.DefaultPreferences(), false, eris.Wrapf(err, "policy: field %s", fieldID)
	}

	farm, err := r.store.GetFarm(ctx, field.FarmID)
	if errors.Is(err, store.ErrNotFound) {
		zap.L().Warn("field has no farm, using default preferences",
			zap.String("field_id", fieldID.String()))
		return model.DefaultPreferences(), false, nil
	}
	if err != nil {
		return model.DefaultPreferences(), false, eris.Wrapf(err, "policy: farm for field %s", fieldID)
	}

	return r.ForUser(ctx, farm.OwnerID)
}
