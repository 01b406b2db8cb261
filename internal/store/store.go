// Package store persists farms, fields, sensor readings,
// recommendations, alerts, and user preferences behind a single
// interface with SQLite and Postgres implementations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sagebrush-ag/fireline/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = eris.New("store: not found")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// FieldFilter specifies criteria for listing fields.
type FieldFilter struct {
	FarmID *uuid.UUID `json:"farm_id,omitempty"`
}

// RecommendationFilter specifies criteria for listing recommendations.
type RecommendationFilter struct {
	FieldID   *uuid.UUID      `json:"field_id,omitempty"`
	AgentType model.AgentType `json:"agent_type,omitempty"`
	Action    model.Action    `json:"action,omitempty"`
	Accepted  *bool           `json:"accepted,omitempty"`
	PSPSAlert *bool           `json:"psps_alert,omitempty"`
	Since     *time.Time      `json:"since,omitempty"`
	Page      int             `json:"page,omitempty"`
	PageSize  int             `json:"page_size,omitempty"`
}

// AlertFilter specifies criteria for listing alerts.
type AlertFilter struct {
	FieldID      *uuid.UUID          `json:"field_id,omitempty"`
	Category     model.AlertCategory `json:"category,omitempty"`
	Severity     model.Severity      `json:"severity,omitempty"`
	AgentType    model.AgentType     `json:"agent_type,omitempty"`
	Acknowledged *bool               `json:"acknowledged,omitempty"`
	Page         int                 `json:"page,omitempty"`
	PageSize     int                 `json:"page_size,omitempty"`
}

// limitOffset converts 1-based page/page_size into SQL limit and
// offset, applying the default and cap.
func limitOffset(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}

// Store defines the persistence interface for the decision platform.
type Store interface {
	// Users and farms
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	CreateFarm(ctx context.Context, f *model.Farm) error
	GetFarm(ctx context.Context, id uuid.UUID) (*model.Farm, error)

	// Fields
	CreateField(ctx context.Context, f *model.Field) error
	GetField(ctx context.Context, id uuid.UUID) (*model.Field, error)
	ListFields(ctx context.Context, filter FieldFilter) ([]model.Field, error)

	// Sensor readings
	InsertReading(ctx context.Context, r *model.SensorReading) error
	LatestReading(ctx context.Context, fieldID uuid.UUID) (*model.SensorReading, error)

	// Recommendations
	CreateRecommendation(ctx context.Context, rec *model.Recommendation) error
	GetRecommendation(ctx context.Context, id uuid.UUID) (*model.Recommendation, error)
	ListRecommendations(ctx context.Context, filter RecommendationFilter) ([]model.Recommendation, error)
	AcceptRecommendation(ctx context.Context, id uuid.UUID, at time.Time) error
	HasRecentRecommendation(ctx context.Context, fieldID uuid.UUID, action model.Action, since time.Time) (bool, error)

	// Alerts
	CreateAlert(ctx context.Context, a *model.Alert) error
	GetAlert(ctx context.Context, id uuid.UUID) (*model.Alert, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]model.Alert, error)
	AcknowledgeAlert(ctx context.Context, id uuid.UUID, at time.Time) error
	ListCriticalAlerts(ctx context.Context, limit int) ([]model.Alert, error)

	// Preferences
	GetPreferences(ctx context.Context, userID uuid.UUID) (*model.UserPreferences, error)
	UpsertPreferences(ctx context.Context, p *model.UserPreferences) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
