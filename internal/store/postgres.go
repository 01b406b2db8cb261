package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sagebrush-ag/fireline/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS farms (
	id         UUID PRIMARY KEY,
	owner_id   UUID NOT NULL REFERENCES users(id),
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS fields (
	id            UUID PRIMARY KEY,
	farm_id       UUID NOT NULL REFERENCES farms(id),
	name          TEXT NOT NULL,
	crop_type     TEXT NOT NULL,
	crop_stage    TEXT NOT NULL DEFAULT 'unknown',
	area_hectares DOUBLE PRECISION NOT NULL DEFAULT 0,
	latitude      DOUBLE PRECISION,
	longitude     DOUBLE PRECISION,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sensor_readings (
	id            UUID PRIMARY KEY,
	field_id      UUID NOT NULL REFERENCES fields(id),
	sensor_id     TEXT NOT NULL,
	soil_moisture DOUBLE PRECISION NOT NULL,
	temperature   DOUBLE PRECISION,
	recorded_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS recommendations (
	id                  UUID PRIMARY KEY,
	field_id            UUID NOT NULL REFERENCES fields(id),
	agent_type          TEXT NOT NULL,
	action              TEXT NOT NULL,
	reason              TEXT NOT NULL,
	recommended_timing  TIMESTAMPTZ,
	zones_affected      JSONB NOT NULL DEFAULT '[]',
	confidence          DOUBLE PRECISION NOT NULL,
	fire_risk_reduction DOUBLE PRECISION NOT NULL DEFAULT 0,
	water_saved_liters  DOUBLE PRECISION NOT NULL DEFAULT 0,
	psps_alert          BOOLEAN NOT NULL DEFAULT false,
	accepted            BOOLEAN NOT NULL DEFAULT false,
	accepted_at         TIMESTAMPTZ,
	created_at          TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id              UUID PRIMARY KEY,
	field_id        UUID REFERENCES fields(id),
	agent_type      TEXT NOT NULL,
	category        TEXT NOT NULL,
	severity        TEXT NOT NULL,
	message         TEXT NOT NULL,
	acknowledged    BOOLEAN NOT NULL DEFAULT false,
	acknowledged_at TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS user_preferences (
	user_id                        UUID PRIMARY KEY REFERENCES users(id),
	email_notifications            BOOLEAN NOT NULL DEFAULT true,
	sms_notifications              BOOLEAN NOT NULL DEFAULT false,
	push_notifications             BOOLEAN NOT NULL DEFAULT true,
	alert_severity_minimum         TEXT NOT NULL DEFAULT 'INFO',
	psps_alerts_enabled            BOOLEAN NOT NULL DEFAULT true,
	fire_risk_alerts_enabled       BOOLEAN NOT NULL DEFAULT true,
	water_milestone_alerts_enabled BOOLEAN NOT NULL DEFAULT true,
	water_cost_per_liter_usd       DOUBLE PRECISION NOT NULL DEFAULT 0.001,
	water_savings_milestone_liters DOUBLE PRECISION NOT NULL DEFAULT 1000,
	psps_pre_irrigation_hours      INTEGER NOT NULL DEFAULT 36,
	psps_auto_pre_irrigate         BOOLEAN NOT NULL DEFAULT true,
	updated_at                     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fields_farm_id ON fields(farm_id);
CREATE INDEX IF NOT EXISTS idx_readings_field_time ON sensor_readings(field_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_recs_field_id ON recommendations(field_id);
CREATE INDEX IF NOT EXISTS idx_recs_created_at ON recommendations(created_at);
CREATE INDEX IF NOT EXISTS idx_alerts_field_id ON alerts(field_id);
CREATE INDEX IF NOT EXISTS idx_alerts_severity_ack ON alerts(severity, acknowledged);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.Name, u.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert user")
}

func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, created_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan user")
	}
	return &u, nil
}

func (s *PostgresStore) CreateFarm(ctx context.Context, f *model.Farm) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO farms (id, owner_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		f.ID, f.OwnerID, f.Name, f.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert farm")
}

func (s *PostgresStore) GetFarm(ctx context.Context, id uuid.UUID) (*model.Farm, error) {
	var f model.Farm
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, created_at FROM farms WHERE id = $1`, id).
		Scan(&f.ID, &f.OwnerID, &f.Name, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan farm")
	}
	return &f, nil
}

func (s *PostgresStore) CreateField(ctx context.Context, f *model.Field) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO fields (id, farm_id, name, crop_type, crop_stage, area_hectares, latitude, longitude, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		f.ID, f.FarmID, f.Name, f.CropType, string(f.CropStage),
		f.AreaHectares, f.Latitude, f.Longitude, f.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert field")
}

const pgFieldColumns = `id, farm_id, name, crop_type, crop_stage, area_hectares, latitude, longitude, created_at`

func (s *PostgresStore) GetField(ctx context.Context, id uuid.UUID) (*model.Field, error) {
	var f model.Field
	var stage string
	err := s.pool.QueryRow(ctx,
		`SELECT `+pgFieldColumns+` FROM fields WHERE id = $1`, id).
		Scan(&f.ID, &f.FarmID, &f.Name, &f.CropType, &stage,
			&f.AreaHectares, &f.Latitude, &f.Longitude, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan field")
	}
	f.CropStage = model.CropStage(stage)
	return &f, nil
}

func (s *PostgresStore) ListFields(ctx context.Context, filter FieldFilter) ([]model.Field, error) {
	query := `SELECT ` + pgFieldColumns + ` FROM fields`
	var args []any
	if filter.FarmID != nil {
		query += ` WHERE farm_id = $1`
		args = append(args, *filter.FarmID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list fields")
	}
	defer rows.Close()

	var fields []model.Field
	for rows.Next() {
		var f model.Field
		var stage string
		if err := rows.Scan(&f.ID, &f.FarmID, &f.Name, &f.CropType, &stage,
			&f.AreaHectares, &f.Latitude, &f.Longitude, &f.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan field")
		}
		f.CropStage = model.CropStage(stage)
		fields = append(fields, f)
	}
	return fields, eris.Wrap(rows.Err(), "postgres: list fields iterate")
}

func (s *PostgresStore) InsertReading(ctx context.Context, r *model.SensorReading) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sensor_readings (id, field_id, sensor_id, soil_moisture, temperature, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.FieldID, r.SensorID, r.SoilMoisture, r.Temperature, r.RecordedAt,
	)
	return eris.Wrap(err, "postgres: insert reading")
}

func (s *PostgresStore) LatestReading(ctx context.Context, fieldID uuid.UUID) (*model.SensorReading, error) {
	var r model.SensorReading
	err := s.pool.QueryRow(ctx,
		`SELECT id, field_id, sensor_id, soil_moisture, temperature, recorded_at
		 FROM sensor_readings WHERE field_id = $1 ORDER BY recorded_at DESC LIMIT 1`, fieldID).
		Scan(&r.ID, &r.FieldID, &r.SensorID, &r.SoilMoisture, &r.Temperature, &r.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan reading")
	}
	return &r, nil
}

func (s *PostgresStore) CreateRecommendation(ctx context.Context, rec *model.Recommendation) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	zones, err := json.Marshal(rec.ZonesAffected)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal zones")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO recommendations
		 (id, field_id, agent_type, action, reason, recommended_timing, zones_affected,
		  confidence, fire_risk_reduction, water_saved_liters, psps_alert, accepted, accepted_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rec.ID, rec.FieldID, string(rec.AgentType), string(rec.Action),
		rec.Reason, rec.RecommendedTiming, zones, rec.Confidence,
		rec.FireRiskReduction, rec.WaterSavedLiters, rec.PSPSAlert, rec.Accepted, rec.AcceptedAt, rec.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert recommendation")
}

func (s *PostgresStore) GetRecommendation(ctx context.Context, id uuid.UUID) (*model.Recommendation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recColumns+` FROM recommendations WHERE id = $1`, id)
	return scanPgRecommendation(row)
}

func (s *PostgresStore) ListRecommendations(ctx context.Context, filter RecommendationFilter) ([]model.Recommendation, error) {
	query := `SELECT ` + recColumns + ` FROM recommendations WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.FieldID != nil {
		query += ` AND field_id = ` + arg(*filter.FieldID)
	}
	if filter.AgentType != "" {
		query += ` AND agent_type = ` + arg(string(filter.AgentType))
	}
	if filter.Action != "" {
		query += ` AND action = ` + arg(string(filter.Action))
	}
	if filter.Accepted != nil {
		query += ` AND accepted = ` + arg(*filter.Accepted)
	}
	if filter.PSPSAlert != nil {
		query += ` AND psps_alert = ` + arg(*filter.PSPSAlert)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ` + arg(*filter.Since)
	}
	query += ` ORDER BY created_at DESC, id`

	limit, offset := limitOffset(filter.Page, filter.PageSize)
	query += ` LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list recommendations")
	}
	defer rows.Close()

	var recs []model.Recommendation
	for rows.Next() {
		r, err := scanPgRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *r)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list recommendations iterate")
}

func (s *PostgresStore) AcceptRecommendation(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.pool.Exec(ctx,
		`UPDATE recommendations
		 SET accepted = true,
		     accepted_at = COALESCE(accepted_at, $1)
		 WHERE id = $2`,
		at.UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: accept recommendation %s", id)
	}
	if res.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "recommendation %s", id)
	}
	return nil
}

func (s *PostgresStore) HasRecentRecommendation(ctx context.Context, fieldID uuid.UUID, action model.Action, since time.Time) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(1) FROM recommendations WHERE field_id = $1 AND action = $2 AND created_at >= $3`,
		fieldID, string(action), since.UTC(),
	).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "postgres: count recent recommendations")
	}
	return n > 0, nil
}

func (s *PostgresStore) CreateAlert(ctx context.Context, a *model.Alert) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO alerts (id, field_id, agent_type, category, severity, message, acknowledged, acknowledged_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.FieldID, string(a.AgentType), string(a.Category), string(a.Severity),
		a.Message, a.Acknowledged, a.AcknowledgedAt, a.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert alert")
}

func (s *PostgresStore) GetAlert(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
	return scanPgAlert(row)
}

func (s *PostgresStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]model.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.FieldID != nil {
		query += ` AND field_id = ` + arg(*filter.FieldID)
	}
	if filter.Category != "" {
		query += ` AND category = ` + arg(string(filter.Category))
	}
	if filter.Severity != "" {
		query += ` AND severity = ` + arg(string(filter.Severity))
	}
	if filter.AgentType != "" {
		query += ` AND agent_type = ` + arg(string(filter.AgentType))
	}
	if filter.Acknowledged != nil {
		query += ` AND acknowledged = ` + arg(*filter.Acknowledged)
	}
	query += ` ORDER BY created_at DESC, id`

	limit, offset := limitOffset(filter.Page, filter.PageSize)
	query += ` LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list alerts")
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		a, err := scanPgAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, eris.Wrap(rows.Err(), "postgres: list alerts iterate")
}

func (s *PostgresStore) AcknowledgeAlert(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.pool.Exec(ctx,
		`UPDATE alerts
		 SET acknowledged = true,
		     acknowledged_at = COALESCE(acknowledged_at, $1)
		 WHERE id = $2`,
		at.UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: acknowledge alert %s", id)
	}
	if res.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "alert %s", id)
	}
	return nil
}

func (s *PostgresStore) ListCriticalAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+alertColumns+` FROM alerts
		 WHERE severity = $1 AND acknowledged = false
		 ORDER BY created_at DESC LIMIT $2`,
		string(model.SeverityCritical), limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list critical alerts")
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		a, err := scanPgAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, eris.Wrap(rows.Err(), "postgres: list critical alerts iterate")
}

func (s *PostgresStore) GetPreferences(ctx context.Context, userID uuid.UUID) (*model.UserPreferences, error) {
	var p model.UserPreferences
	var minSeverity string
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, email_notifications, sms_notifications, push_notifications,
		        alert_severity_minimum, psps_alerts_enabled, fire_risk_alerts_enabled,
		        water_milestone_alerts_enabled, water_cost_per_liter_usd,
		        water_savings_milestone_liters, psps_pre_irrigation_hours,
		        psps_auto_pre_irrigate, updated_at
		 FROM user_preferences WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.EmailNotifications, &p.SMSNotifications, &p.PushNotifications,
			&minSeverity, &p.PSPSAlertsEnabled, &p.FireRiskAlertsEnabled,
			&p.WaterMilestoneAlertsEnabled, &p.WaterCostPerLiterUSD,
			&p.WaterSavingsMilestoneLiters, &p.PSPSPreIrrigationHours,
			&p.PSPSAutoPreIrrigate, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan preferences")
	}
	p.AlertSeverityMinimum = model.Severity(minSeverity)
	return &p, nil
}

func (s *PostgresStore) UpsertPreferences(ctx context.Context, p *model.UserPreferences) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_preferences
		 (user_id, email_notifications, sms_notifications, push_notifications,
		  alert_severity_minimum, psps_alerts_enabled, fire_risk_alerts_enabled,
		  water_milestone_alerts_enabled, water_cost_per_liter_usd,
		  water_savings_milestone_liters, psps_pre_irrigation_hours,
		  psps_auto_pre_irrigate, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (user_id) DO UPDATE SET
		  email_notifications = EXCLUDED.email_notifications,
		  sms_notifications = EXCLUDED.sms_notifications,
		  push_notifications = EXCLUDED.push_notifications,
		  alert_severity_minimum = EXCLUDED.alert_severity_minimum,
		  psps_alerts_enabled = EXCLUDED.psps_alerts_enabled,
		  fire_risk_alerts_enabled = EXCLUDED.fire_risk_alerts_enabled,
		  water_milestone_alerts_enabled = EXCLUDED.water_milestone_alerts_enabled,
		  water_cost_per_liter_usd = EXCLUDED.water_cost_per_liter_usd,
		  water_savings_milestone_liters = EXCLUDED.water_savings_milestone_liters,
		  psps_pre_irrigation_hours = EXCLUDED.psps_pre_irrigation_hours,
		  psps_auto_pre_irrigate = EXCLUDED.psps_auto_pre_irrigate,
		  updated_at = EXCLUDED.updated_at`,
		p.UserID, p.EmailNotifications, p.SMSNotifications, p.PushNotifications,
		string(p.AlertSeverityMinimum), p.PSPSAlertsEnabled, p.FireRiskAlertsEnabled,
		p.WaterMilestoneAlertsEnabled, p.WaterCostPerLiterUSD,
		p.WaterSavingsMilestoneLiters, p.PSPSPreIrrigationHours,
		p.PSPSAutoPreIrrigate, p.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: upsert preferences")
}

// helpers

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func scanPgRecommendation(row scannable) (*model.Recommendation, error) {
	var r model.Recommendation
	var agentType, action string
	var zones []byte

	err := row.Scan(&r.ID, &r.FieldID, &agentType, &action, &r.Reason,
		&r.RecommendedTiming, &zones, &r.Confidence, &r.FireRiskReduction,
		&r.WaterSavedLiters, &r.PSPSAlert, &r.Accepted, &r.AcceptedAt, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan recommendation")
	}

	r.AgentType = model.AgentType(agentType)
	r.Action = model.Action(action)
	if err := json.Unmarshal(zones, &r.ZonesAffected); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal zones")
	}
	return &r, nil
}

func scanPgAlert(row scannable) (*model.Alert, error) {
	var a model.Alert
	var agentType, category, severity string

	err := row.Scan(&a.ID, &a.FieldID, &agentType, &category, &severity,
		&a.Message, &a.Acknowledged, &a.AcknowledgedAt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan alert")
	}

	a.AgentType = model.AgentType(agentType)
	a.Category = model.AlertCategory(category)
	a.Severity = model.Severity(severity)
	return &a, nil
}
