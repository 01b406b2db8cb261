package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sagebrush-ag/fireline/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS farms (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL REFERENCES users(id),
	name       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS fields (
	id            TEXT PRIMARY KEY,
	farm_id       TEXT NOT NULL REFERENCES farms(id),
	name          TEXT NOT NULL,
	crop_type     TEXT NOT NULL,
	crop_stage    TEXT NOT NULL DEFAULT 'unknown',
	area_hectares REAL NOT NULL DEFAULT 0,
	latitude      REAL,
	longitude     REAL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sensor_readings (
	id            TEXT PRIMARY KEY,
	field_id      TEXT NOT NULL REFERENCES fields(id),
	sensor_id     TEXT NOT NULL,
	soil_moisture REAL NOT NULL,
	temperature   REAL,
	recorded_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS recommendations (
	id                  TEXT PRIMARY KEY,
	field_id            TEXT NOT NULL REFERENCES fields(id),
	agent_type          TEXT NOT NULL,
	action              TEXT NOT NULL,
	reason              TEXT NOT NULL,
	recommended_timing  DATETIME,
	zones_affected      TEXT NOT NULL DEFAULT '[]',
	confidence          REAL NOT NULL,
	fire_risk_reduction REAL NOT NULL DEFAULT 0,
	water_saved_liters  REAL NOT NULL DEFAULT 0,
	psps_alert          INTEGER NOT NULL DEFAULT 0,
	accepted            INTEGER NOT NULL DEFAULT 0,
	accepted_at         DATETIME,
	created_at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id              TEXT PRIMARY KEY,
	field_id        TEXT REFERENCES fields(id),
	agent_type      TEXT NOT NULL,
	category        TEXT NOT NULL,
	severity        TEXT NOT NULL,
	message         TEXT NOT NULL,
	acknowledged    INTEGER NOT NULL DEFAULT 0,
	acknowledged_at DATETIME,
	created_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS user_preferences (
	user_id                        TEXT PRIMARY KEY REFERENCES users(id),
	email_notifications            INTEGER NOT NULL DEFAULT 1,
	sms_notifications              INTEGER NOT NULL DEFAULT 0,
	push_notifications             INTEGER NOT NULL DEFAULT 1,
	alert_severity_minimum         TEXT NOT NULL DEFAULT 'INFO',
	psps_alerts_enabled            INTEGER NOT NULL DEFAULT 1,
	fire_risk_alerts_enabled       INTEGER NOT NULL DEFAULT 1,
	water_milestone_alerts_enabled INTEGER NOT NULL DEFAULT 1,
	water_cost_per_liter_usd       REAL NOT NULL DEFAULT 0.001,
	water_savings_milestone_liters REAL NOT NULL DEFAULT 1000,
	psps_pre_irrigation_hours      INTEGER NOT NULL DEFAULT 36,
	psps_auto_pre_irrigate         INTEGER NOT NULL DEFAULT 1,
	updated_at                     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fields_farm_id ON fields(farm_id);
CREATE INDEX IF NOT EXISTS idx_readings_field_time ON sensor_readings(field_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_recs_field_id ON recommendations(field_id);
CREATE INDEX IF NOT EXISTS idx_recs_created_at ON recommendations(created_at);
CREATE INDEX IF NOT EXISTS idx_alerts_field_id ON alerts(field_id);
CREATE INDEX IF NOT EXISTS idx_alerts_severity_ack ON alerts(severity, acknowledged);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)`,
		u.ID.String(), u.Email, u.Name, u.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert user")
}

func (s *SQLiteStore) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM users WHERE id = ?`, id.String())

	var u model.User
	var rawID string
	err := row.Scan(&rawID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan user")
	}
	u.ID, _ = uuid.Parse(rawID)
	return &u, nil
}

func (s *SQLiteStore) CreateFarm(ctx context.Context, f *model.Farm) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO farms (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)`,
		f.ID.String(), f.OwnerID.String(), f.Name, f.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert farm")
}

func (s *SQLiteStore) GetFarm(ctx context.Context, id uuid.UUID) (*model.Farm, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, created_at FROM farms WHERE id = ?`, id.String())

	var f model.Farm
	var rawID, rawOwner string
	err := row.Scan(&rawID, &rawOwner, &f.Name, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan farm")
	}
	f.ID, _ = uuid.Parse(rawID)
	f.OwnerID, _ = uuid.Parse(rawOwner)
	return &f, nil
}

func (s *SQLiteStore) CreateField(ctx context.Context, f *model.Field) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fields (id, farm_id, name, crop_type, crop_stage, area_hectares, latitude, longitude, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID.String(), f.FarmID.String(), f.Name, f.CropType, string(f.CropStage),
		f.AreaHectares, f.Latitude, f.Longitude, f.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert field")
}

func (s *SQLiteStore) GetField(ctx context.Context, id uuid.UUID) (*model.Field, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, farm_id, name, crop_type, crop_stage, area_hectares, latitude, longitude, created_at
		 FROM fields WHERE id = ?`, id.String())
	f, err := scanField(row)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *SQLiteStore) ListFields(ctx context.Context, filter FieldFilter) ([]model.Field, error) {
	query := `SELECT id, farm_id, name, crop_type, crop_stage, area_hectares, latitude, longitude, created_at
	          FROM fields WHERE 1=1`
	var args []any
	if filter.FarmID != nil {
		query += ` AND farm_id = ?`
		args = append(args, filter.FarmID.String())
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list fields")
	}
	defer rows.Close()

	var fields []model.Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, *f)
	}
	return fields, eris.Wrap(rows.Err(), "sqlite: list fields iterate")
}

func (s *SQLiteStore) InsertReading(ctx context.Context, r *model.SensorReading) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sensor_readings (id, field_id, sensor_id, soil_moisture, temperature, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.FieldID.String(), r.SensorID, r.SoilMoisture, r.Temperature, r.RecordedAt,
	)
	return eris.Wrap(err, "sqlite: insert reading")
}

func (s *SQLiteStore) LatestReading(ctx context.Context, fieldID uuid.UUID) (*model.SensorReading, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, field_id, sensor_id, soil_moisture, temperature, recorded_at
		 FROM sensor_readings WHERE field_id = ? ORDER BY recorded_at DESC LIMIT 1`,
		fieldID.String())

	var r model.SensorReading
	var rawID, rawField string
	err := row.Scan(&rawID, &rawField, &r.SensorID, &r.SoilMoisture, &r.Temperature, &r.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan reading")
	}
	r.ID, _ = uuid.Parse(rawID)
	r.FieldID, _ = uuid.Parse(rawField)
	return &r, nil
}

func (s *SQLiteStore) CreateRecommendation(ctx context.Context, rec *model.Recommendation) error {
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
		return eris.Wrap(err, "sqlite: marshal zones")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recommendations
		 (id, field_id, agent_type, action, reason, recommended_timing, zones_affected,
		  confidence, fire_risk_reduction, water_saved_liters, psps_alert, accepted, accepted_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.FieldID.String(), string(rec.AgentType), string(rec.Action),
		rec.Reason, rec.RecommendedTiming, string(zones), rec.Confidence,
		rec.FireRiskReduction, rec.WaterSavedLiters, rec.PSPSAlert, rec.Accepted, rec.AcceptedAt, rec.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert recommendation")
}

const recColumns = `id, field_id, agent_type, action, reason, recommended_timing, zones_affected,
	confidence, fire_risk_reduction, water_saved_liters, psps_alert, accepted, accepted_at, created_at`

func (s *SQLiteStore) GetRecommendation(ctx context.Context, id uuid.UUID) (*model.Recommendation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recColumns+` FROM recommendations WHERE id = ?`, id.String())
	return scanRecommendation(row)
}

func (s *SQLiteStore) ListRecommendations(ctx context.Context, filter RecommendationFilter) ([]model.Recommendation, error) {
	query := `SELECT ` + recColumns + ` FROM recommendations WHERE 1=1`
	var args []any

	if filter.FieldID != nil {
		query += ` AND field_id = ?`
		args = append(args, filter.FieldID.String())
	}
	if filter.AgentType != "" {
		query += ` AND agent_type = ?`
		args = append(args, string(filter.AgentType))
	}
	if filter.Action != "" {
		query += ` AND action = ?`
		args = append(args, string(filter.Action))
	}
	if filter.Accepted != nil {
		query += ` AND accepted = ?`
		args = append(args, *filter.Accepted)
	}
	if filter.PSPSAlert != nil {
		query += ` AND psps_alert = ?`
		args = append(args, *filter.PSPSAlert)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.Since)
	}
	query += ` ORDER BY created_at DESC, id`

	limit, offset := limitOffset(filter.Page, filter.PageSize)
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list recommendations")
	}
	defer rows.Close()

	var recs []model.Recommendation
	for rows.Next() {
		r, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *r)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list recommendations iterate")
}

func (s *SQLiteStore) AcceptRecommendation(ctx context.Context, id uuid.UUID, at time.Time) error {
	// Repeated accepts keep the original timestamp.
	res, err := s.db.ExecContext(ctx,
		`UPDATE recommendations
		 SET accepted = 1,
		     accepted_at = COALESCE(accepted_at, ?)
		 WHERE id = ?`,
		at.UTC(), id.String(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: accept recommendation %s", id)
	}
	return checkRowsAffected(res, "recommendation", id.String())
}

func (s *SQLiteStore) HasRecentRecommendation(ctx context.Context, fieldID uuid.UUID, action model.Action, since time.Time) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM recommendations WHERE field_id = ? AND action = ? AND created_at >= ?`,
		fieldID.String(), string(action), since.UTC(),
	)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, eris.Wrap(err, "sqlite: count recent recommendations")
	}
	return n > 0, nil
}

func (s *SQLiteStore) CreateAlert(ctx context.Context, a *model.Alert) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	var fieldID any
	if a.FieldID != nil {
		fieldID = a.FieldID.String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, field_id, agent_type, category, severity, message, acknowledged, acknowledged_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), fieldID, string(a.AgentType), string(a.Category), string(a.Severity),
		a.Message, a.Acknowledged, a.AcknowledgedAt, a.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert alert")
}

const alertColumns = `id, field_id, agent_type, category, severity, message, acknowledged, acknowledged_at, created_at`

func (s *SQLiteStore) GetAlert(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id.String())
	return scanAlert(row)
}

func (s *SQLiteStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]model.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1=1`
	var args []any

	if filter.FieldID != nil {
		query += ` AND field_id = ?`
		args = append(args, filter.FieldID.String())
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(filter.Category))
	}
	if filter.Severity != "" {
		query += ` AND severity = ?`
		args = append(args, string(filter.Severity))
	}
	if filter.AgentType != "" {
		query += ` AND agent_type = ?`
		args = append(args, string(filter.AgentType))
	}
	if filter.Acknowledged != nil {
		query += ` AND acknowledged = ?`
		args = append(args, *filter.Acknowledged)
	}
	query += ` ORDER BY created_at DESC, id`

	limit, offset := limitOffset(filter.Page, filter.PageSize)
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list alerts")
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, eris.Wrap(rows.Err(), "sqlite: list alerts iterate")
}

func (s *SQLiteStore) AcknowledgeAlert(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts
		 SET acknowledged = 1,
		     acknowledged_at = COALESCE(acknowledged_at, ?)
		 WHERE id = ?`,
		at.UTC(), id.String(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: acknowledge alert %s", id)
	}
	return checkRowsAffected(res, "alert", id.String())
}

func (s *SQLiteStore) ListCriticalAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+alertColumns+` FROM alerts
		 WHERE severity = ? AND acknowledged = 0
		 ORDER BY created_at DESC LIMIT ?`,
		string(model.SeverityCritical), limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list critical alerts")
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, eris.Wrap(rows.Err(), "sqlite: list critical alerts iterate")
}

func (s *SQLiteStore) GetPreferences(ctx context.Context, userID uuid.UUID) (*model.UserPreferences, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, email_notifications, sms_notifications, push_notifications,
		        alert_severity_minimum, psps_alerts_enabled, fire_risk_alerts_enabled,
		        water_milestone_alerts_enabled, water_cost_per_liter_usd,
		        water_savings_milestone_liters, psps_pre_irrigation_hours,
		        psps_auto_pre_irrigate, updated_at
		 FROM user_preferences WHERE user_id = ?`, userID.String())

	var p model.UserPreferences
	var rawID string
	err := row.Scan(&rawID, &p.EmailNotifications, &p.SMSNotifications, &p.PushNotifications,
		&p.AlertSeverityMinimum, &p.PSPSAlertsEnabled, &p.FireRiskAlertsEnabled,
		&p.WaterMilestoneAlertsEnabled, &p.WaterCostPerLiterUSD,
		&p.WaterSavingsMilestoneLiters, &p.PSPSPreIrrigationHours,
		&p.PSPSAutoPreIrrigate, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan preferences")
	}
	p.UserID, _ = uuid.Parse(rawID)
	return &p, nil
}

func (s *SQLiteStore) UpsertPreferences(ctx context.Context, p *model.UserPreferences) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_preferences
		 (user_id, email_notifications, sms_notifications, push_notifications,
		  alert_severity_minimum, psps_alerts_enabled, fire_risk_alerts_enabled,
		  water_milestone_alerts_enabled, water_cost_per_liter_usd,
		  water_savings_milestone_liters, psps_pre_irrigation_hours,
		  psps_auto_pre_irrigate, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		  email_notifications = excluded.email_notifications,
		  sms_notifications = excluded.sms_notifications,
		  push_notifications = excluded.push_notifications,
		  alert_severity_minimum = excluded.alert_severity_minimum,
		  psps_alerts_enabled = excluded.psps_alerts_enabled,
		  fire_risk_alerts_enabled = excluded.fire_risk_alerts_enabled,
		  water_milestone_alerts_enabled = excluded.water_milestone_alerts_enabled,
		  water_cost_per_liter_usd = excluded.water_cost_per_liter_usd,
		  water_savings_milestone_liters = excluded.water_savings_milestone_liters,
		  psps_pre_irrigation_hours = excluded.psps_pre_irrigation_hours,
		  psps_auto_pre_irrigate = excluded.psps_auto_pre_irrigate,
		  updated_at = excluded.updated_at`,
		p.UserID.String(), p.EmailNotifications, p.SMSNotifications, p.PushNotifications,
		string(p.AlertSeverityMinimum), p.PSPSAlertsEnabled, p.FireRiskAlertsEnabled,
		p.WaterMilestoneAlertsEnabled, p.WaterCostPerLiterUSD,
		p.WaterSavingsMilestoneLiters, p.PSPSPreIrrigationHours,
		p.PSPSAutoPreIrrigate, p.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: upsert preferences")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanField(row scannable) (*model.Field, error) {
	var f model.Field
	var rawID, rawFarm string
	var stage string
	err := row.Scan(&rawID, &rawFarm, &f.Name, &f.CropType, &stage,
		&f.AreaHectares, &f.Latitude, &f.Longitude, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan field")
	}
	f.ID, _ = uuid.Parse(rawID)
	f.FarmID, _ = uuid.Parse(rawFarm)
	f.CropStage = model.CropStage(stage)
	return &f, nil
}

func scanRecommendation(row scannable) (*model.Recommendation, error) {
	var r model.Recommendation
	var rawID, rawField, agentType, action, zonesJSON string

	err := row.Scan(&rawID, &rawField, &agentType, &action, &r.Reason,
		&r.RecommendedTiming, &zonesJSON, &r.Confidence, &r.FireRiskReduction,
		&r.WaterSavedLiters, &r.PSPSAlert, &r.Accepted, &r.AcceptedAt, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan recommendation")
	}

	r.ID, _ = uuid.Parse(rawID)
	r.FieldID, _ = uuid.Parse(rawField)
	r.AgentType = model.AgentType(agentType)
	r.Action = model.Action(action)
	if err := json.Unmarshal([]byte(zonesJSON), &r.ZonesAffected); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal zones")
	}
	return &r, nil
}

func scanAlert(row scannable) (*model.Alert, error) {
	var a model.Alert
	var rawID string
	var rawField sql.NullString
	var agentType, category, severity string

	err := row.Scan(&rawID, &rawField, &agentType, &category, &severity,
		&a.Message, &a.Acknowledged, &a.AcknowledgedAt, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan alert")
	}

	a.ID, _ = uuid.Parse(rawID)
	if rawField.Valid {
		id, err := uuid.Parse(rawField.String)
		if err == nil {
			a.FieldID = &id
		}
	}
	a.AgentType = model.AgentType(agentType)
	a.Category = model.AlertCategory(category)
	a.Severity = model.Severity(severity)
	return &a, nil
}
