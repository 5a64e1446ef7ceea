package booking

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/rest"
)

// HTTPBookingClient talks to the booking API.
type HTTPBookingClient struct {
	client *rest.Client
}

func NewHTTPBookingClient(client *rest.Client) *HTTPBookingClient {
	return &HTTPBookingClient{client: client}
}

func (c *HTTPBookingClient) Create(ctx context.Context, req BookingRequest) (int64, error) {
	var resp struct {
		BookingID int64 `json:"videoLinkBookingId"`
	}
	if err := c.client.Post(ctx, "/video-link-booking", req, &resp); err != nil {
		return 0, err
	}
	return resp.BookingID, nil
}

func (c *HTTPBookingClient) Amend(ctx context.Context, id int64, req BookingRequest) (int64, error) {
	if err := c.client.Put(ctx, fmt.Sprintf("/video-link-booking/id/%d", id), req, nil); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *HTTPBookingClient) Get(ctx context.Context, id int64) (*Booking, error) {
	var b Booking
	if err := c.client.Get(ctx, fmt.Sprintf("/video-link-booking/id/%d", id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *HTTPBookingClient) Cancel(ctx context.Context, id int64) error {
	return c.client.Delete(ctx, fmt.Sprintf("/video-link-booking/id/%d", id))
}

// HTTPAppointmentSearcher queries the activities API's appointment search.
type HTTPAppointmentSearcher struct {
	client *rest.Client
}

func NewHTTPAppointmentSearcher(client *rest.Client) *HTTPAppointmentSearcher {
	return &HTTPAppointmentSearcher{client: client}
}

func (c *HTTPAppointmentSearcher) SearchAppointments(ctx context.Context, prisonCode, date string) ([]AppointmentSearchResult, error) {
	req := struct {
		Date string `json:"date"`
	}{Date: date}

	var results []AppointmentSearchResult
	path := fmt.Sprintf("/appointments/%s/search", url.PathEscape(prisonCode))
	if err := c.client.Post(ctx, path, req, &results); err != nil {
		return nil, err
	}
	return results, nil
}
