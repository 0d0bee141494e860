package controllers

import (
	"context"
	"ddtours/src/db"
	"ddtours/src/lib"
	"ddtours/src/models"
	"ddtours/src/types"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type PaymentsController struct {
	deps     Deps
	bookings *BookingsController
}

// PaymentResult is returned once a payment is verified and its booking is
// stored.
type PaymentResult struct {
	BookingID string          `json:"bookingId"`
	Booking   *models.Booking `json:"data"`
	Replayed  bool            `json:"-"`
}

// CreateOrder opens a gateway order. The amount is priced from the trip when
// tripId is given and taken from the body otherwise.
func (c *PaymentsController) CreateOrder(ctx context.Context, body *types.CreateOrderRequestBody) (*lib.Order, int, error) {
	amount := body.Amount
	if body.TripID != "" {
		trip, status, err := loadTrip(ctx, c.deps.Store, body.TripID, "Trip not found")
		if err != nil {
			return nil, status, err
		}
		if err := trip.BookableAt(c.deps.Now()); err != nil {
			return nil, http.StatusBadRequest, types.NewValidationError("This trip is not open for booking")
		}
		seats := body.Seats
		if seats < 1 {
			seats = 1
		}
		amount = models.BookingTotal(trip.Price, seats)
	}
	if amount <= 0 {
		return nil, http.StatusBadRequest, types.NewValidationError("Amount is required")
	}
	receipt := "receipt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	order, err := c.deps.Gateway.CreateOrder(ctx, lib.ToMinorUnits(amount), c.deps.Config.PaymentCurrency, receipt)
	if err != nil {
		log.Printf("[Payments] Error creating %s order: %s\n", c.deps.Gateway.Name(), err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return order, http.StatusOK, nil
}

// Verify checks the payment proof and stores the paid booking. Nothing is
// written when the proof does not match or the captured amount is short of
// the booking total. Verifying the same order twice returns the booking
// stored the first time, to its owner only.
func (c *PaymentsController) Verify(ctx context.Context, actor *types.Actor, body *types.VerifyPaymentRequestBody) (*PaymentResult, int, error) {
	if actor == nil {
		return nil, http.StatusUnauthorized, types.ErrUnauthenticated
	}
	gateway := c.deps.Gateway.Name()
	paid, err := c.deps.Gateway.VerifyPayment(ctx, body.OrderID, body.PaymentID, body.Signature)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrInvalidSignature):
			c.deps.Metrics.PaymentsVerified.WithLabelValues(gateway, "invalid").Inc()
			log.Printf("[Payments] Signature mismatch for order [%s]\n", body.OrderID)
			return nil, http.StatusBadRequest, types.NewValidationError("Invalid Signature")
		case errors.Is(err, types.ErrPaymentIncomplete):
			c.deps.Metrics.PaymentsVerified.WithLabelValues(gateway, "incomplete").Inc()
			return nil, http.StatusBadRequest, types.NewValidationError("Payment has not completed")
		}
		c.deps.Metrics.PaymentsVerified.WithLabelValues(gateway, "error").Inc()
		log.Printf("[Payments] Error verifying order [%s]: %s\n", body.OrderID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	existing, err := db.FindAll[models.Booking](ctx, c.deps.Store, types.COLLECTION_BOOKINGS,
		db.Where("orderId", body.OrderID).Take(1))
	if err != nil {
		log.Printf("[Payments] Error looking up booking for order [%s]: %s\n", body.OrderID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	if len(existing) > 0 {
		b := existing[0]
		if b.UserID != actor.ID {
			log.Printf("[Payments] Order [%s] replayed by another user [%s]\n", body.OrderID, actor.ID)
			return nil, http.StatusForbidden, errors.New("This payment belongs to another booking")
		}
		return &PaymentResult{BookingID: b.ID, Booking: &b, Replayed: true}, http.StatusOK, nil
	}

	// The payment is already captured, so a trip that closed in the meantime
	// still gets its booking.
	booking, status, err := c.bookings.build(ctx, actor, &body.BookingDetails, false)
	if err != nil {
		return nil, status, err
	}
	if paid < lib.ToMinorUnits(booking.TotalAmount) {
		c.deps.Metrics.PaymentsVerified.WithLabelValues(gateway, "underpaid").Inc()
		log.Printf("[Payments] Order [%s] captured %d, booking total is %.2f\n", body.OrderID, paid, booking.TotalAmount)
		return nil, http.StatusBadRequest, types.NewValidationError("Paid amount does not cover the booking total")
	}
	c.deps.Metrics.PaymentsVerified.WithLabelValues(gateway, "verified").Inc()
	booking.PaymentMethod = types.PAYMENT_ONLINE
	booking.PaymentStatus = types.PAYMENT_PAID
	booking.Status = types.BOOKING_CONFIRMED
	booking.OrderID = body.OrderID
	booking.PaymentID = body.PaymentID
	booking.Gateway = gateway
	if status, err := c.bookings.save(ctx, booking); err != nil {
		return nil, status, err
	}
	log.Printf("[Payments] Confirmed booking [%s] for order [%s]\n", booking.ID, body.OrderID)
	if c.deps.Notifier != nil {
		c.deps.Notifier.BookingConfirmed(booking)
	}
	return &PaymentResult{BookingID: booking.ID, Booking: booking}, http.StatusOK, nil
}
