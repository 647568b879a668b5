// Package gateway is the thin HTTP client layer between the local store and
// the backend. It exchanges snake_case JSON with the server and translates
// transport failures into the shared error taxonomy: common.ErrNetwork for
// unreachable hosts, common.ErrValidation for 4xx responses,
// common.ErrServer for 5xx. All three are sentinels matched with errors.Is.
package gateway

import (
	"context"

	"github.com/fairwaylabs/scorecard/internal/models"
)

// Client is the per-entity remote API used by the services and the sync
// queue processor. Implementations are stateless request/response adapters;
// retry policy lives with the caller.
type Client interface {
	// Ping checks backend reachability.
	Ping(ctx context.Context) error

	ListRounds(ctx context.Context) ([]models.Round, error)
	CreateRound(ctx context.Context, rd models.Round) (*models.Round, error)
	UpdateRound(ctx context.Context, rd models.Round) (*models.Round, error)
	DeleteRound(ctx context.Context, serverID int64) error

	ListCourses(ctx context.Context) ([]models.Course, error)
	CreateCourse(ctx context.Context, c models.Course) (*models.Course, error)
	UpdateCourse(ctx context.Context, c models.Course) (*models.Course, error)
	UpdateHoleDefinition(ctx context.Context, hd models.HoleDefinition) (*models.HoleDefinition, error)

	GetBag(ctx context.Context) ([]models.Club, error)
	ReplaceBag(ctx context.Context, clubs []models.Club) ([]models.Club, error)
}

// IdentitySource supplies the username attached to every outbound request.
// The services implement it over the locally stored user.
type IdentitySource interface {
	Username(ctx context.Context) (string, error)
}
