package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sagebrush-ag/fireline/internal/gateway"
	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/policy"
	"github.com/sagebrush-ag/fireline/internal/store"
)

// perEventShare is the fraction of a crop's monthly typical usage that
// one recommended irrigation event consumes.
const perEventShare = 0.10

// Reporter computes water-efficiency and fire-risk metrics by comparing
// recommendation history against crop baselines.
type Reporter struct {
	store      store.Store
	gateways   *gateway.Gateways
	prefs      *policy.Resolver
	milestones *MilestoneTracker
	now        func() time.Time
}

// NewReporter builds a Reporter.
func NewReporter(s store.Store, g *gateway.Gateways, prefs *policy.Resolver, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{
		store:      s,
		gateways:   g,
		prefs:      prefs,
		milestones: NewMilestoneTracker(),
		now:        now,
	}
}

// listAllRecommendations walks every page of the filter. Period
// aggregates must count the whole window, not one page of it.
func listAllRecommendations(ctx context.Context, s store.Store, filter store.RecommendationFilter) ([]model.Recommendation, error) {
	filter.PageSize = 100
	var all []model.Recommendation
	for page := 1; ; page++ {
		filter.Page = page
		recs, err := s.ListRecommendations(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
		if len(recs) < filter.PageSize {
			return all, nil
		}
	}
}

// WaterMetrics computes water efficiency for one field over the period.
func (r *Reporter) WaterMetrics(ctx context.Context, fieldID uuid.UUID, period model.Period) (*model.WaterMetrics, error) {
	field, err := r.store.GetField(ctx, fieldID)
	if err != nil {
		return nil, eris.Wrapf(err, "agent: field %s", fieldID)
	}

	prefs, _, err := r.prefs.ForField(ctx, fieldID)
	if err != nil {
		zap.L().Warn("preferences unavailable, using defaults",
			zap.String("field_id", fieldID.String()), zap.Error(err))
		prefs = model.DefaultPreferences()
	}

	now := r.now()
	filter := store.RecommendationFilter{
		FieldID:   &fieldID,
		AgentType: model.AgentFireAdaptiveIrrigation,
	}
	var periodStart *time.Time
	if start, ok := period.Start(now); ok {
		filter.Since = &start
		periodStart = &start
	}
	recs, err := listAllRecommendations(ctx, r.store, filter)
	if err != nil {
		return nil, eris.Wrap(err, "agent: list recommendations")
	}

	monthlyTypical := policy.CropMonthlyWater(field.CropType) * field.AreaHectares
	typical := monthlyTypical * period.Months()

	recommended := 0.0
	irrigationEvents := 0
	for i := range recs {
		switch recs[i].Action {
		case model.ActionIrrigate, model.ActionPreIrrigate:
			recommended += monthlyTypical * perEventShare
			irrigationEvents++
		}
	}

	saved := max(0, typical-recommended)
	efficiency := 0.0
	if typical > 0 {
		efficiency = saved / typical * 100
	}

	metrics := &model.WaterMetrics{
		FieldID:              field.ID,
		FieldName:            field.Name,
		Period:               period,
		PeriodStart:          periodStart,
		CropType:             field.CropType,
		AreaHectares:         field.AreaHectares,
		TypicalUsageLiters:   typical,
		RecommendedLiters:    recommended,
		WaterSavedLiters:     saved,
		EfficiencyPercent:    efficiency,
		CostSavingsUSD:       saved * prefs.WaterCostPerLiterUSD,
		DroughtStressScore:   r.droughtStress(ctx, fieldID),
		RecommendationCount:  len(recs),
		IrrigationEventCount: irrigationEvents,
		ComputedAt:           now.UTC(),
	}

	r.checkMilestone(ctx, field, &prefs, saved)

	return metrics, nil
}

// FarmSummary aggregates per-field water metrics across a farm. A
// failure on one field is logged and the rest still contribute.
func (r *Reporter) FarmSummary(ctx context.Context, farmID uuid.UUID, period model.Period) (*model.FarmWaterSummary, error) {
	fields, err := r.store.ListFields(ctx, store.FieldFilter{FarmID: &farmID})
	if err != nil {
		return nil, eris.Wrap(err, "agent: list fields")
	}
	if len(fields) == 0 {
		return nil, eris.Wrapf(store.ErrNotFound, "agent: no fields for farm %s", farmID)
	}

	summary := &model.FarmWaterSummary{FarmID: farmID, Period: period}
	efficiencySum := 0.0
	for i := range fields {
		metrics, err := r.WaterMetrics(ctx, fields[i].ID, period)
		if err != nil {
			zap.L().Warn("skipping field in farm summary",
				zap.String("field_id", fields[i].ID.String()), zap.Error(err))
			continue
		}
		summary.Fields = append(summary.Fields, *metrics)
		summary.TotalSavedLiters += metrics.WaterSavedLiters
		summary.TotalCostUSD += metrics.CostSavingsUSD
		efficiencySum += metrics.EfficiencyPercent
	}
	if len(summary.Fields) > 0 {
		summary.AverageEfficiency = efficiencySum / float64(len(summary.Fields))
	}
	return summary, nil
}

// FireRiskMetrics summarizes accepted fire-adaptive actions for a field
// and the field's current exposure.
func (r *Reporter) FireRiskMetrics(ctx context.Context, fieldID uuid.UUID, period model.Period) (*model.FireRiskMetrics, error) {
	field, err := r.store.GetField(ctx, fieldID)
	if err != nil {
		return nil, eris.Wrapf(err, "agent: field %s", fieldID)
	}

	accepted := true
	filter := store.RecommendationFilter{
		FieldID:  &fieldID,
		Accepted: &accepted,
	}
	if start, ok := period.Start(r.now()); ok {
		filter.Since = &start
	}
	recs, err := listAllRecommendations(ctx, r.store, filter)
	if err != nil {
		return nil, eris.Wrap(err, "agent: list recommendations")
	}

	metrics := &model.FireRiskMetrics{
		FieldID:          fieldID,
		Period:           period,
		CurrentRiskScore: r.currentRiskScore(ctx, field),
	}
	totalReduction := 0.0
	adaptiveCount := 0
	for i := range recs {
		switch recs[i].Action {
		case model.ActionDelay:
			metrics.DelayCount++
		case model.ActionPreIrrigate:
			metrics.PreIrrigationCount++
		}
		if recs[i].AgentType == model.AgentFireAdaptiveIrrigation {
			totalReduction += recs[i].FireRiskReduction
			adaptiveCount++
		}
	}
	if adaptiveCount > 0 {
		metrics.RiskReductionPercent = totalReduction / float64(adaptiveCount)
	}
	return metrics, nil
}

// droughtStress scores 0-100 from the latest soil moisture reading.
// Lower is better; no data scores a moderate 50.
func (r *Reporter) droughtStress(ctx context.Context, fieldID uuid.UUID) float64 {
	reading, err := r.store.LatestReading(ctx, fieldID)
	if errors.Is(err, store.ErrNotFound) {
		return 50.0
	}
	if err != nil {
		zap.L().Warn("latest reading lookup failed",
			zap.String("field_id", fieldID.String()), zap.Error(err))
		return 50.0
	}

	m := reading.SoilMoisture
	switch {
	case m >= 40:
		return max(0, 30-(m-40)*0.5)
	case m >= 30:
		return 30 + (40-m)*2
	default:
		return min(100, 70+(30-m)*1.5)
	}
}

func (r *Reporter) currentRiskScore(ctx context.Context, field *model.Field) float64 {
	lat, lon, err := field.Location()
	if err != nil {
		return 0.5
	}
	zones, err := r.gateways.FireRisk.ZonesNear(ctx, lat, lon)
	if err != nil {
		zap.L().Warn("fire risk lookup failed",
			zap.String("field_id", field.ID.String()), zap.Error(err))
		return 0.5
	}
	score, ok := zones.MaxScore()
	if !ok {
		return 0.5
	}
	return score
}

func (r *Reporter) checkMilestone(ctx context.Context, field *model.Field, prefs *model.UserPreferences, savedLiters float64) {
	if !prefs.WaterMilestoneAlertsEnabled {
		return
	}
	tier, ok := r.milestones.Crossed(field.ID, savedLiters, prefs.WaterSavingsMilestoneLiters)
	if !ok {
		return
	}

	alert := &model.Alert{
		FieldID:   &field.ID,
		AgentType: model.AgentWaterEfficiency,
		Category:  model.CategoryWaterSavedMilestone,
		Severity:  model.SeverityInfo,
		Message: fmt.Sprintf(
			"Water savings milestone reached: field '%s' has saved over %.0f liters compared to typical usage.",
			field.Name, tier),
		CreatedAt: r.now().UTC(),
	}
	if err := r.store.CreateAlert(ctx, alert); err != nil {
		zap.L().Error("failed to create milestone alert",
			zap.String("field_id", field.ID.String()), zap.Error(err))
		return
	}
	zap.L().Info("water savings milestone",
		zap.String("field_id", field.ID.String()),
		zap.Float64("milestone_liters", tier))
}
