package models

import (
	"ddtours/src/types"
	"math"
	"time"
)

type Booking struct {
	ID            string                `firestore:"-" json:"id"`
	UserID        string                `firestore:"userId" json:"userId"`
	TripID        string                `firestore:"tripId" json:"tripId"`
	TripTitle     string                `firestore:"tripTitle" json:"tripTitle"`
	UnitPrice     float64               `firestore:"unitPrice" json:"unitPrice"`
	TripDate      string                `firestore:"tripDate" json:"tripDate"`
	Seats         int                   `firestore:"seats" json:"seats"`
	TotalAmount   float64               `firestore:"totalAmount" json:"totalAmount"`
	PaymentMethod types.PaymentMethod   `firestore:"paymentMethod" json:"paymentMethod"`
	PaymentStatus types.PaymentStatus   `firestore:"paymentStatus" json:"paymentStatus"`
	Status        types.BookingStatus   `firestore:"status" json:"status"`
	OrderID       string                `firestore:"orderId,omitempty" json:"orderId,omitempty"`
	PaymentID     string                `firestore:"paymentId,omitempty" json:"paymentId,omitempty"`
	Gateway       string                `firestore:"gateway,omitempty" json:"gateway,omitempty"`
	UserDetails   types.TravelerDetails `firestore:"userDetails" json:"userDetails"`
	CreatedAt     time.Time             `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time             `firestore:"updatedAt" json:"updatedAt"`

	Live *LiveTrip `firestore:"-" json:"live,omitempty"`
}

// LiveTrip is the current state of the booked trip, joined at read time.
type LiveTrip struct {
	Title        string             `json:"title"`
	TripDate     string             `json:"tripDate"`
	ScheduleMode types.ScheduleMode `json:"scheduleMode,omitempty"`
	Status       types.TripStatus   `json:"status,omitempty"`
	Available    bool               `json:"available"`
}

func (b *Booking) SetID(id string) {
	b.ID = id
}

// NewBooking snapshots the trip into a pending booking. The total is always
// derived from the trip price.
func NewBooking(userID string, trip *Trip, seats int, details types.TravelerDetails, method types.PaymentMethod, now time.Time) *Booking {
	if method == "" {
		method = types.PAYMENT_PAY_ON_ARRIVAL
	}
	return &Booking{
		UserID:        userID,
		TripID:        trip.ID,
		TripTitle:     trip.Title,
		UnitPrice:     trip.Price,
		TripDate:      trip.EffectiveDate(),
		Seats:         seats,
		TotalAmount:   BookingTotal(trip.Price, seats),
		PaymentMethod: method,
		PaymentStatus: types.PAYMENT_PENDING,
		Status:        types.BOOKING_PENDING,
		UserDetails:   details,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func BookingTotal(unitPrice float64, seats int) float64 {
	return math.Round(unitPrice*float64(seats)*100) / 100
}

// Overlay attaches the live trip, falling back to the booking snapshot when
// the trip could not be read.
func (b *Booking) Overlay(trip *Trip) {
	if trip == nil {
		b.Live = &LiveTrip{
			Title:     b.TripTitle,
			TripDate:  b.TripDate,
			Available: false,
		}
		return
	}
	b.Live = &LiveTrip{
		Title:        trip.Title,
		TripDate:     trip.EffectiveDate(),
		ScheduleMode: trip.ScheduleMode,
		Status:       trip.Status,
		Available:    true,
	}
}
