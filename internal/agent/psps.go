package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sagebrush-ag/fireline/internal/gateway"
	"github.com/sagebrush-ag/fireline/internal/geo"
	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/policy"
	"github.com/sagebrush-ag/fireline/internal/store"
)

// preIrrigateDedupWindow suppresses repeat PRE_IRRIGATE
// recommendations for a field that got one recently.
const preIrrigateDedupWindow = 6 * time.Hour

// SweepOptions narrows a PSPS sweep to one field or one farm. Both nil
// means every field.
type SweepOptions struct {
	FieldID *uuid.UUID
	FarmID  *uuid.UUID
}

// SweepResult summarizes one PSPS monitoring pass.
type SweepResult struct {
	AffectedFieldIDs       []uuid.UUID `json:"affected_field_ids"`
	NewEventCount          int         `json:"new_event_count"`
	AlertsCreated          int         `json:"alerts_created"`
	RecommendationsCreated int         `json:"recommendations_created"`
}

// Sweeper monitors utility shutoff events and raises alerts and
// pre-irrigation recommendations for affected fields.
type Sweeper struct {
	store    store.Store
	gateways *gateway.Gateways
	prefs    *policy.Resolver
	seen     *SeenEvents
	now      func() time.Time
}

// NewSweeper builds a Sweeper.
func NewSweeper(s store.Store, g *gateway.Gateways, prefs *policy.Resolver, seen *SeenEvents, now func() time.Time) *Sweeper {
	if now == nil {
		now = time.Now
	}
	if seen == nil {
		seen = NewSeenEvents(0, 0, now)
	}
	return &Sweeper{store: s, gateways: g, prefs: prefs, seen: seen, now: now}
}

type affectedPair struct {
	field *model.Field
	event *model.PSPSEvent
}

// Run executes one sweep: match events to fields, alert on events not
// seen before, and create pre-irrigation recommendations for predicted
// shutoffs inside the owner's lead window. A failure on one field never
// stops the rest of the sweep.
func (s *Sweeper) Run(ctx context.Context, opts SweepOptions) (*SweepResult, error) {
	events, err := s.gateways.PSPS.Events(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "agent: fetch psps events")
	}

	fields, err := s.store.ListFields(ctx, store.FieldFilter{FarmID: opts.FarmID})
	if err != nil {
		return nil, eris.Wrap(err, "agent: list fields")
	}

	result := &SweepResult{}
	var pairs []affectedPair
	affectedSeen := map[uuid.UUID]bool{}

	for i := range fields {
		field := &fields[i]
		if opts.FieldID != nil && field.ID != *opts.FieldID {
			continue
		}
		lat, lon, err := field.Location()
		if err != nil {
			zap.L().Debug("skipping field without location", zap.String("field_id", field.ID.String()))
			continue
		}
		for j := range events {
			if !geo.EventCoversField(&events[j], lat, lon) {
				continue
			}
			pairs = append(pairs, affectedPair{field: field, event: &events[j]})
			if !affectedSeen[field.ID] {
				affectedSeen[field.ID] = true
				result.AffectedFieldIDs = append(result.AffectedFieldIDs, field.ID)
			}
		}
	}

	// Newness is decided once per event per sweep, so one event
	// affecting several fields alerts all of them this pass and none
	// on the next.
	newEvents := map[string]bool{}
	for _, p := range pairs {
		if _, decided := newEvents[p.event.EventID]; decided {
			continue
		}
		newEvents[p.event.EventID] = s.seen.MarkNew(p.event.EventID)
	}
	for _, isNew := range newEvents {
		if isNew {
			result.NewEventCount++
		}
	}

	for _, p := range pairs {
		if !newEvents[p.event.EventID] {
			continue
		}
		if s.createAlert(ctx, p.field, p.event) {
			result.AlertsCreated++
		}
	}

	for _, p := range pairs {
		if p.event.Status != model.PSPSPredicted {
			continue
		}
		if s.createPreIrrigation(ctx, p.field, p.event) {
			result.RecommendationsCreated++
		}
	}

	zap.L().Info("psps sweep complete",
		zap.Int("affected_fields", len(result.AffectedFieldIDs)),
		zap.Int("new_events", result.NewEventCount),
		zap.Int("alerts_created", result.AlertsCreated),
		zap.Int("recommendations_created", result.RecommendationsCreated),
	)
	return result, nil
}

func (s *Sweeper) createAlert(ctx context.Context, field *model.Field, ev *model.PSPSEvent) bool {
	prefs, _, err := s.prefs.ForField(ctx, field.ID)
	if err != nil {
		zap.L().Warn("preferences unavailable, using defaults",
			zap.String("field_id", field.ID.String()), zap.Error(err))
		prefs = model.DefaultPreferences()
	}
	if !prefs.PSPSAlertsEnabled {
		zap.L().Debug("psps alerts disabled for field", zap.String("field_id", field.ID.String()))
		return false
	}

	var category model.AlertCategory
	var severity model.Severity
	var message string
	switch ev.Status {
	case model.PSPSActive:
		category, severity = model.CategoryPSPSActive, model.SeverityCritical
		message = formatActiveAlert(field, ev)
	case model.PSPSPredicted:
		category, severity = model.CategoryPSPSWarning, model.SeverityCritical
		message = formatPredictedAlert(field, ev)
	default:
		category, severity = model.CategoryPSPSWarning, model.SeverityWarning
		message = formatGenericAlert(field, ev)
	}

	alert := &model.Alert{
		FieldID:   &field.ID,
		AgentType: model.AgentPSPSAnticipation,
		Category:  category,
		Severity:  severity,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateAlert(ctx, alert); err != nil {
		zap.L().Error("failed to create psps alert",
			zap.String("field_id", field.ID.String()),
			zap.String("event_id", ev.EventID),
			zap.Error(err))
		return false
	}
	return true
}

func (s *Sweeper) createPreIrrigation(ctx context.Context, field *model.Field, ev *model.PSPSEvent) bool {
	prefs, _, err := s.prefs.ForField(ctx, field.ID)
	if err != nil {
		prefs = model.DefaultPreferences()
	}
	if !prefs.PSPSAutoPreIrrigate {
		return false
	}

	leadHours := float64(prefs.PSPSPreIrrigationHours)
	if leadHours <= 0 {
		leadHours = 36
	}

	now := s.now()
	hours, ok := ev.HoursUntilStart(now)
	if !ok || hours <= 0 || hours > leadHours {
		return false
	}

	recent, err := s.store.HasRecentRecommendation(ctx, field.ID, model.ActionPreIrrigate, now.Add(-preIrrigateDedupWindow))
	if err != nil {
		zap.L().Error("pre-irrigation dedup check failed",
			zap.String("field_id", field.ID.String()), zap.Error(err))
		return false
	}
	if recent {
		zap.L().Debug("recent pre-irrigation recommendation exists, skipping",
			zap.String("field_id", field.ID.String()))
		return false
	}

	timing := now.Add(preIrrigationLead(hours))
	rec := &model.Recommendation{
		FieldID:   field.ID,
		AgentType: model.AgentPSPSAnticipation,
		Action:    model.ActionPreIrrigate,
		Reason: fmt.Sprintf(
			"Power shutoff predicted in %.1f hours. Pre-irrigate now to ensure crops have adequate water during the shutoff period.",
			hours),
		RecommendedTiming: &timing,
		Confidence:        0.85,
		PSPSAlert:         true,
		CreatedAt:         now.UTC(),
	}
	if err := s.store.CreateRecommendation(ctx, rec); err != nil {
		zap.L().Error("failed to create pre-irrigation recommendation",
			zap.String("field_id", field.ID.String()), zap.Error(err))
		return false
	}

	zap.L().Info("pre-irrigation recommendation created",
		zap.String("field_id", field.ID.String()),
		zap.String("event_id", ev.EventID),
		zap.Float64("hours_until_shutoff", hours),
	)
	return true
}

func formatActiveAlert(field *model.Field, ev *model.PSPSEvent) string {
	return fmt.Sprintf(
		"ACTIVE POWER SHUTOFF: %s has shut off power in your area. Field '%s' is affected. Started: %s, Estimated end: %s. Do not attempt irrigation during shutoff.",
		ev.Utility, field.Name, formatEventTime(ev.StartTime), formatEventTime(ev.EndTime))
}

func formatPredictedAlert(field *model.Field, ev *model.PSPSEvent) string {
	return fmt.Sprintf(
		"POWER SHUTOFF PREDICTED: %s may shut off power soon. Field '%s' may be affected. Predicted start: %s, End: %s. Confidence: %.0f%%. Consider pre-irrigating to prepare.",
		ev.Utility, field.Name, formatEventTime(ev.PredictedStart), formatEventTime(ev.PredictedEnd), ev.Confidence*100)
}

func formatGenericAlert(field *model.Field, ev *model.PSPSEvent) string {
	return fmt.Sprintf(
		"PSPS Event: %s has a %s shutoff event that may affect field '%s'. Please monitor for updates.",
		ev.Utility, ev.Status, field.Name)
}

func formatEventTime(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}
