package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sagebrush-ag/fireline/internal/agent"
	"github.com/sagebrush-ag/fireline/internal/model"
	"github.com/sagebrush-ag/fireline/internal/store"
)

// api holds the handler dependencies.
type api struct {
	env *appEnv
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("response encode failed", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrMissingLocation):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

func queryPeriod(r *http.Request) (model.Period, error) {
	return model.ParsePeriod(r.URL.Query().Get("period"))
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Email == "" {
		badRequest(w, "email is required")
		return
	}

	user := &model.User{Email: req.Email, Name: req.Name}
	if err := a.env.Store.CreateUser(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (a *api) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "userID")
	if !ok {
		badRequest(w, "invalid user id")
		return
	}
	user, err := a.env.Store.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (a *api) createFarm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID uuid.UUID `json:"owner_id"`
		Name    string    `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.OwnerID == uuid.Nil || req.Name == "" {
		badRequest(w, "owner_id and name are required")
		return
	}

	farm := &model.Farm{OwnerID: req.OwnerID, Name: req.Name}
	if err := a.env.Store.CreateFarm(r.Context(), farm); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, farm)
}

func (a *api) getFarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "farmID")
	if !ok {
		badRequest(w, "invalid farm id")
		return
	}
	farm, err := a.env.Store.GetFarm(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, farm)
}

func (a *api) listFarmFields(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "farmID")
	if !ok {
		badRequest(w, "invalid farm id")
		return
	}
	fields, err := a.env.Store.ListFields(r.Context(), store.FieldFilter{FarmID: &id})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fields)
}

func (a *api) createField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FarmID       uuid.UUID `json:"farm_id"`
		Name         string    `json:"name"`
		CropType     string    `json:"crop_type"`
		CropStage    string    `json:"crop_stage"`
		AreaHectares float64   `json:"area_hectares"`
		Latitude     *float64  `json:"latitude"`
		Longitude    *float64  `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.FarmID == uuid.Nil || req.Name == "" {
		badRequest(w, "farm_id and name are required")
		return
	}

	field := &model.Field{
		FarmID:       req.FarmID,
		Name:         req.Name,
		CropType:     req.CropType,
		CropStage:    model.CropStage(req.CropStage),
		AreaHectares: req.AreaHectares,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}
	if err := a.env.Store.CreateField(r.Context(), field); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, field)
}

func (a *api) listFields(w http.ResponseWriter, r *http.Request) {
	farmID, err := queryUUID(r, "farm_id")
	if err != nil {
		badRequest(w, "invalid farm_id")
		return
	}
	fields, err := a.env.Store.ListFields(r.Context(), store.FieldFilter{FarmID: farmID})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fields)
}

func (a *api) getField(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "fieldID")
	if !ok {
		badRequest(w, "invalid field id")
		return
	}
	field, err := a.env.Store.GetField(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, field)
}

func (a *api) insertReading(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "fieldID")
	if !ok {
		badRequest(w, "invalid field id")
		return
	}

	var req struct {
		SensorID     string     `json:"sensor_id"`
		SoilMoisture float64    `json:"soil_moisture"`
		Temperature  *float64   `json:"temperature"`
		RecordedAt   *time.Time `json:"recorded_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.SoilMoisture < 0 || req.SoilMoisture > 100 {
		badRequest(w, "soil_moisture must be within [0, 100]")
		return
	}

	reading := &model.SensorReading{
		FieldID:      id,
		SensorID:     req.SensorID,
		SoilMoisture: req.SoilMoisture,
		Temperature:  req.Temperature,
	}
	if req.RecordedAt != nil {
		reading.RecordedAt = *req.RecordedAt
	}
	if err := a.env.Store.InsertReading(r.Context(), reading); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, reading)
}

func (a *api) latestReading(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "fieldID")
	if !ok {
		badRequest(w, "invalid field id")
		return
	}
	reading, err := a.env.Store.LatestReading(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reading)
}

func (a *api) fieldSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "fieldID")
	if !ok {
		badRequest(w, "invalid field id")
		return
	}
	_, snap, err := a.env.Collector.Snapshot(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (a *api) recommend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "fieldID")
	if !ok {
		badRequest(w, "invalid field id")
		return
	}
	rec, err := a.env.Engine.Recommend(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (a *api) fieldWaterMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "fieldID")
	if !ok {
		badRequest(w, "invalid field id")
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	metrics, err := a.env.Reporter.WaterMetrics(r.Context(), id, period)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

func (a *api) farmWaterMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "farmID")
	if !ok {
		badRequest(w, "invalid farm id")
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	summary, err := a.env.Reporter.FarmSummary(r.Context(), id, period)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (a *api) fieldFireMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "fieldID")
	if !ok {
		badRequest(w, "invalid field id")
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	metrics, err := a.env.Reporter.FireRiskMetrics(r.Context(), id, period)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

func (a *api) listRecommendations(w http.ResponseWriter, r *http.Request) {
	fieldID, err := queryUUID(r, "field_id")
	if err != nil {
		badRequest(w, "invalid field_id")
		return
	}
	accepted, err := queryBool(r, "accepted")
	if err != nil {
		badRequest(w, "invalid accepted")
		return
	}
	pspsAlert, err := queryBool(r, "psps_alert")
	if err != nil {
		badRequest(w, "invalid psps_alert")
		return
	}

	filter := store.RecommendationFilter{
		FieldID:   fieldID,
		AgentType: model.AgentType(r.URL.Query().Get("agent_type")),
		Action:    model.Action(r.URL.Query().Get("action")),
		Accepted:  accepted,
		PSPSAlert: pspsAlert,
		Page:      queryInt(r, "page"),
		PageSize:  queryInt(r, "page_size"),
	}
	recs, err := a.env.Store.ListRecommendations(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

func (a *api) getRecommendation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "recID")
	if !ok {
		badRequest(w, "invalid recommendation id")
		return
	}
	rec, err := a.env.Store.GetRecommendation(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (a *api) acceptRecommendation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "recID")
	if !ok {
		badRequest(w, "invalid recommendation id")
		return
	}
	if err := a.env.Store.AcceptRecommendation(r.Context(), id, time.Now().UTC()); err != nil {
		respondError(w, err)
		return
	}
	rec, err := a.env.Store.GetRecommendation(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (a *api) explainRecommendation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "recID")
	if !ok {
		badRequest(w, "invalid recommendation id")
		return
	}
	explanation, err := a.env.Explainer.Explain(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, explanation)
}

func (a *api) pspsSweep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FieldID *uuid.UUID `json:"field_id"`
		FarmID  *uuid.UUID `json:"farm_id"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid request body")
			return
		}
	}

	result, err := a.env.Sweeper.Run(r.Context(), agent.SweepOptions{
		FieldID: req.FieldID,
		FarmID:  req.FarmID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *api) listAlerts(w http.ResponseWriter, r *http.Request) {
	fieldID, err := queryUUID(r, "field_id")
	if err != nil {
		badRequest(w, "invalid field_id")
		return
	}
	acknowledged, err := queryBool(r, "acknowledged")
	if err != nil {
		badRequest(w, "invalid acknowledged")
		return
	}

	filter := store.AlertFilter{
		FieldID:      fieldID,
		Category:     model.AlertCategory(r.URL.Query().Get("category")),
		Severity:     model.Severity(r.URL.Query().Get("severity")),
		AgentType:    model.AgentType(r.URL.Query().Get("agent_type")),
		Acknowledged: acknowledged,
		Page:         queryInt(r, "page"),
		PageSize:     queryInt(r, "page_size"),
	}
	alerts, err := a.env.Store.ListAlerts(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

func (a *api) criticalAlerts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	if limit <= 0 {
		limit = 10
	}
	alerts, err := a.env.Store.ListCriticalAlerts(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

func (a *api) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "alertID")
	if !ok {
		badRequest(w, "invalid alert id")
		return
	}
	if err := a.env.Store.AcknowledgeAlert(r.Context(), id, time.Now().UTC()); err != nil {
		respondError(w, err)
		return
	}
	alert, err := a.env.Store.GetAlert(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alert)
}

func (a *api) getPreferences(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "userID")
	if !ok {
		badRequest(w, "invalid user id")
		return
	}
	prefs, _, err := a.env.Prefs.ForUser(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

func (a *api) putPreferences(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "userID")
	if !ok {
		badRequest(w, "invalid user id")
		return
	}

	var prefs model.UserPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	prefs.UserID = id

	if err := a.env.Store.UpsertPreferences(r.Context(), &prefs); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}
