package schedule

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/rest"
)

// HTTPLocationClient is the locations-service implementation of LocationClient.
type HTTPLocationClient struct {
	client *rest.Client
}

func NewHTTPLocationClient(client *rest.Client) *HTTPLocationClient {
	return &HTTPLocationClient{client: client}
}

func (c *HTTPLocationClient) AppointmentLocations(ctx context.Context, prisonCode string) ([]Location, error) {
	var locations []Location
	path := fmt.Sprintf("/locations/prison/%s/non-residential-usage-type/APPOINTMENT", url.PathEscape(prisonCode))
	if err := c.client.Get(ctx, path, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (c *HTTPLocationClient) ResolveLocationKey(ctx context.Context, key string) (*Location, error) {
	var location Location
	if err := c.client.Get(ctx, "/locations/key/"+url.PathEscape(key), &location); err != nil {
		return nil, err
	}
	return &location, nil
}

// HTTPEventsClient reads prisoner timelines from the prison API and room
// occupancy from the activities API.
type HTTPEventsClient struct {
	prison     *rest.Client
	activities *rest.Client
}

func NewHTTPEventsClient(prison, activities *rest.Client) *HTTPEventsClient {
	return &HTTPEventsClient{prison: prison, activities: activities}
}

func (c *HTTPEventsClient) PrisonerEvents(ctx context.Context, prisonCode, prisonerNumber, date string) ([]ScheduleEvent, error) {
	var events []ScheduleEvent
	path := fmt.Sprintf("/schedules/%s/prisoners/%s/scheduled-events?date=%s",
		url.PathEscape(prisonCode), url.PathEscape(prisonerNumber), url.QueryEscape(date))
	if err := c.prison.Get(ctx, path, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *HTTPEventsClient) LocationEvents(ctx context.Context, prisonCode, date string, locationIDs []int64) (map[int64][]ScheduleEvent, error) {
	type locationEvents struct {
		LocationID int64           `json:"locationId"`
		Events     []ScheduleEvent `json:"events"`
	}
	req := struct {
		Date        string  `json:"date"`
		LocationIDs []int64 `json:"locationIds"`
	}{Date: date, LocationIDs: locationIDs}

	var out []locationEvents
	path := fmt.Sprintf("/prisons/%s/scheduled-events/locations", url.PathEscape(prisonCode))
	if err := c.activities.Post(ctx, path, req, &out); err != nil {
		return nil, err
	}

	byID := make(map[int64][]ScheduleEvent, len(out))
	for _, le := range out {
		byID[le.LocationID] = le.Events
	}
	return byID, nil
}
