package reference

import (
	"context"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/rest"
)

// HTTPClient reads the catalogues from the booking API.
type HTTPClient struct {
	client *rest.Client
}

func NewHTTPClient(client *rest.Client) *HTTPClient {
	return &HTTPClient{client: client}
}

func (c *HTTPClient) Courts(ctx context.Context) ([]Item, error) {
	return c.list(ctx, "/courts")
}

func (c *HTTPClient) ProbationTeams(ctx context.Context) ([]Item, error) {
	return c.list(ctx, "/probation-teams")
}

func (c *HTTPClient) CourtHearingTypes(ctx context.Context) ([]Item, error) {
	return c.list(ctx, "/reference-codes/group/COURT_HEARING_TYPE")
}

func (c *HTTPClient) ProbationMeetingTypes(ctx context.Context) ([]Item, error) {
	return c.list(ctx, "/reference-codes/group/PROBATION_MEETING_TYPE")
}

func (c *HTTPClient) list(ctx context.Context, path string) ([]Item, error) {
	var items []Item
	if err := c.client.Get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}
