package reference

import "context"

// Client reads the reference catalogues from the booking API.
type Client interface {
	Courts(ctx context.Context) ([]Item, error)
	ProbationTeams(ctx context.Context) ([]Item, error)
	CourtHearingTypes(ctx context.Context) ([]Item, error)
	ProbationMeetingTypes(ctx context.Context) ([]Item, error)
}
