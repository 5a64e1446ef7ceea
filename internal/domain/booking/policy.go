package booking

import "time"

// AmendPolicy decides whether a booking may still be edited or cancelled.
// The clock is injectable for tests; a zero policy uses time.Now.
type AmendPolicy struct {
	Now func() time.Time
}

// Amendable is false for cancelled bookings and for any booking whose start
// instant is not strictly in the future. A booking starting exactly now is
// no longer amendable.
func (p AmendPolicy) Amendable(date, startTime string, status BookingStatus) bool {
	if status == StatusCancelled {
		return false
	}
	start, err := time.ParseInLocation(DateFormat+" "+TimeFormat, date+" "+startTime, time.Local)
	if err != nil {
		return false
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return start.After(now())
}

// AmendableBooking applies the policy to an upstream booking record.
func (p AmendPolicy) AmendableBooking(b *Booking) bool {
	main := b.MainAppointment()
	if main == nil {
		return false
	}
	return p.Amendable(main.Date, main.StartTime, b.Status)
}
