package booking

import "time"

// SlotPolicy carries the tunable parts of slot derivation.
type SlotPolicy struct {
	// PrePostLength is the length of a pre or post slot when the caller
	// does not supply explicit times.
	PrePostLength time.Duration
}

// DefaultSlotPolicy matches the standard 15-minute court setup window.
var DefaultSlotPolicy = SlotPolicy{PrePostLength: 15 * time.Minute}

// SlotInput is everything slot derivation needs. Pre/post times are optional;
// when absent the policy default length is applied against the main window.
type SlotInput struct {
	Date         string
	MainStart    string
	MainEnd      string
	LocationCode string

	PreRequired     bool
	PreStart        string
	PreEnd          string
	PreLocationCode string

	PostRequired     bool
	PostStart        string
	PostEnd          string
	PostLocationCode string
}

// ComputeSlots derives the PRE/MAIN/POST windows with the default policy.
func ComputeSlots(in SlotInput) ([]TimeSlot, error) {
	return DefaultSlotPolicy.ComputeSlots(in)
}

// ComputeSlots derives the discrete time slots of one booking. Pure: no I/O,
// deterministic. A PRE slot always ends exactly at the main start; a POST
// slot always begins exactly at the main end.
func (p SlotPolicy) ComputeSlots(in SlotInput) ([]TimeSlot, error) {
	if _, err := parseDate("date", in.Date); err != nil {
		return nil, err
	}
	mainStart, err := parseClock("mainStart", in.MainStart)
	if err != nil {
		return nil, err
	}
	mainEnd, err := parseClock("mainEnd", in.MainEnd)
	if err != nil {
		return nil, err
	}
	if !mainEnd.After(mainStart) {
		return nil, &FieldError{Field: "mainEnd", Message: "must be after the main start time"}
	}

	var slots []TimeSlot

	if in.PreRequired {
		pre := TimeSlot{
			Type:         SlotPre,
			LocationCode: orDefault(in.PreLocationCode, in.LocationCode),
			Date:         in.Date,
			EndTime:      in.MainStart,
		}
		if in.PreStart != "" || in.PreEnd != "" {
			preStart, err := parseClock("preStart", in.PreStart)
			if err != nil {
				return nil, err
			}
			preEnd, err := parseClock("preEnd", in.PreEnd)
			if err != nil {
				return nil, err
			}
			if !preEnd.After(preStart) {
				return nil, &FieldError{Field: "preEnd", Message: "must be after the pre-hearing start time"}
			}
			if !preEnd.Equal(mainStart) {
				return nil, &FieldError{Field: "preEnd", Message: "must end exactly when the main hearing starts"}
			}
			pre.StartTime = in.PreStart
		} else {
			pre.StartTime = mainStart.Add(-p.PrePostLength).Format(TimeFormat)
		}
		slots = append(slots, pre)
	}

	slots = append(slots, TimeSlot{
		Type:         SlotMain,
		LocationCode: in.LocationCode,
		Date:         in.Date,
		StartTime:    in.MainStart,
		EndTime:      in.MainEnd,
	})

	if in.PostRequired {
		post := TimeSlot{
			Type:         SlotPost,
			LocationCode: orDefault(in.PostLocationCode, in.LocationCode),
			Date:         in.Date,
			StartTime:    in.MainEnd,
		}
		if in.PostStart != "" || in.PostEnd != "" {
			postStart, err := parseClock("postStart", in.PostStart)
			if err != nil {
				return nil, err
			}
			postEnd, err := parseClock("postEnd", in.PostEnd)
			if err != nil {
				return nil, err
			}
			if !postStart.Equal(mainEnd) {
				return nil, &FieldError{Field: "postStart", Message: "must begin exactly when the main hearing ends"}
			}
			if !postEnd.After(postStart) {
				return nil, &FieldError{Field: "postEnd", Message: "must be after the post-hearing start time"}
			}
			post.EndTime = in.PostEnd
		} else {
			post.EndTime = mainEnd.Add(p.PrePostLength).Format(TimeFormat)
		}
		slots = append(slots, post)
	}

	return slots, nil
}

// SlotsFromJourney derives the slot input from the journey's own fields.
func (p SlotPolicy) SlotsFromJourney(j *BookingJourney) ([]TimeSlot, error) {
	return p.ComputeSlots(SlotInput{
		Date:             j.Date,
		MainStart:        j.MainStart,
		MainEnd:          j.MainEnd,
		LocationCode:     j.LocationCode,
		PreRequired:      j.PreRequired,
		PreStart:         j.PreStart,
		PreEnd:           j.PreEnd,
		PreLocationCode:  j.PreLocationCode,
		PostRequired:     j.PostRequired,
		PostStart:        j.PostStart,
		PostEnd:          j.PostEnd,
		PostLocationCode: j.PostLocationCode,
	})
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
