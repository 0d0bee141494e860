package models

import (
	"ddtours/src/config"
	"ddtours/src/types"
	"time"
)

type TripImage struct {
	URL string `firestore:"url" json:"url"`
	ID  string `firestore:"id" json:"id"`
}

type Trip struct {
	ID            string             `firestore:"-" json:"id"`
	Title         string             `firestore:"title" json:"title"`
	Description   string             `firestore:"description" json:"description"`
	Price         float64            `firestore:"price" json:"price"`
	Duration      string             `firestore:"duration" json:"duration"`
	Location      string             `firestore:"location" json:"location"`
	Status        types.TripStatus   `firestore:"status" json:"status"`
	ScheduleMode  types.ScheduleMode `firestore:"scheduleMode" json:"scheduleMode"`
	FixedDate     string             `firestore:"fixedDate" json:"fixedDate"`
	ExpectedMonth string             `firestore:"expectedMonth" json:"expectedMonth"`
	BookingCutoff string             `firestore:"bookingCutoff" json:"bookingCutoff"`
	IncludedItems []string           `firestore:"includedItems" json:"includedItems"`
	PlacesCovered []string           `firestore:"placesCovered" json:"placesCovered"`
	Images        []TripImage        `firestore:"images" json:"images"`
	AverageRating float64            `firestore:"averageRating" json:"averageRating"`
	TotalRatings  int                `firestore:"totalRatings" json:"totalRatings"`
	CreatedAt     time.Time          `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `firestore:"updatedAt" json:"updatedAt"`
}

func (t *Trip) SetID(id string) {
	t.ID = id
}

// NormalizeSchedule derives the scheduling mode from the date fields.
// A fixed date wins over an expected month; the losing field is cleared.
func (t *Trip) NormalizeSchedule() {
	switch {
	case t.FixedDate != "":
		t.ScheduleMode = types.SCHEDULE_FIXED
		t.ExpectedMonth = ""
	case t.ExpectedMonth != "":
		t.ScheduleMode = types.SCHEDULE_MONTH
	default:
		t.ScheduleMode = types.SCHEDULE_UNSCHEDULED
	}
}

func (t *Trip) EffectiveDate() string {
	if t.FixedDate != "" {
		return t.FixedDate
	}
	if t.ExpectedMonth != "" {
		return t.ExpectedMonth
	}
	return types.TRIP_DATE_TBD
}

func (t *Trip) FirstImage() string {
	if len(t.Images) == 0 {
		return ""
	}
	return t.Images[0].URL
}

// BookableAt reports whether new bookings are accepted at the given instant.
// The cutoff date is inclusive.
func (t *Trip) BookableAt(now time.Time) error {
	if t.Status == types.TRIP_CANCELLED || t.Status == types.TRIP_COMPLETED {
		return types.ErrTripUnavailable
	}
	if t.BookingCutoff == "" {
		return nil
	}
	cutoff, err := time.ParseInLocation(config.DATE_FORMAT, t.BookingCutoff, now.Location())
	if err != nil {
		return nil
	}
	if now.After(cutoff.AddDate(0, 0, 1)) {
		return types.ErrBookingClosed
	}
	return nil
}
