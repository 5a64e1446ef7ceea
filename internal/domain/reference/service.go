package reference

import (
	"context"
	"fmt"
)

type Service struct {
	client Client
}

func NewService(client Client) *Service {
	return &Service{client: client}
}

// List returns one catalogue, restricted to enabled entries unless
// includeDisabled is set.
func (s *Service) List(ctx context.Context, catalogue string, includeDisabled bool) ([]Item, error) {
	var (
		items []Item
		err   error
	)
	switch catalogue {
	case CatalogueCourts:
		items, err = s.client.Courts(ctx)
	case CatalogueProbationTeams:
		items, err = s.client.ProbationTeams(ctx)
	case CatalogueHearingTypes:
		items, err = s.client.CourtHearingTypes(ctx)
	case CatalogueMeetingTypes:
		items, err = s.client.ProbationMeetingTypes(ctx)
	default:
		return nil, fmt.Errorf("unknown catalogue %q", catalogue)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", catalogue, err)
	}
	if includeDisabled {
		return items, nil
	}

	enabled := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Enabled {
			enabled = append(enabled, it)
		}
	}
	return enabled, nil
}
