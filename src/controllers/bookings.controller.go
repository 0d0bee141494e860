package controllers

import (
	"context"
	"ddtours/src/db"
	"ddtours/src/models"
	"ddtours/src/types"
	"ddtours/src/utils"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"

	"github.com/tidwall/gjson"
	"github.com/yeqown/go-qrcode"
)

type BookingsController struct {
	deps Deps
}

// build snapshots the live trip into a new pending booking. When checkOpen is
// set the trip must still accept bookings.
func (c *BookingsController) build(ctx context.Context, actor *types.Actor, body *types.CreateBookingRequestBody, checkOpen bool) (*models.Booking, int, error) {
	if body.TripID == "" {
		return nil, http.StatusBadRequest, types.NewValidationError("Trip ID is required")
	}
	if body.Seats < 1 {
		return nil, http.StatusBadRequest, types.NewValidationError("Seats must be a positive whole number")
	}
	trip, status, err := loadTrip(ctx, c.deps.Store, body.TripID, "Trip not found")
	if err != nil {
		return nil, status, err
	}
	now := c.deps.Now()
	if checkOpen {
		if err := trip.BookableAt(now); err != nil {
			if errors.Is(err, types.ErrBookingClosed) {
				return nil, http.StatusBadRequest, types.NewValidationError("Bookings are closed for this trip")
			}
			return nil, http.StatusBadRequest, types.NewValidationError("This trip is not open for booking")
		}
	}
	details := body.UserDetails
	if details.Email == "" {
		details.Email = actor.Email
	}
	if details.Name == "" {
		details.Name = actor.Name
	}
	return models.NewBooking(actor.ID, trip, body.Seats, details, body.PaymentMethod, now), http.StatusOK, nil
}

func (c *BookingsController) save(ctx context.Context, booking *models.Booking) (int, error) {
	id, err := c.deps.Store.Create(ctx, types.COLLECTION_BOOKINGS, booking)
	if err != nil {
		log.Printf("[Bookings] Error saving booking for trip [%s]: %s\n", booking.TripID, err.Error())
		return http.StatusInternalServerError, err
	}
	booking.SetID(id)
	c.deps.Metrics.BookingsCreated.WithLabelValues(string(booking.PaymentMethod)).Inc()
	return http.StatusCreated, nil
}

func (c *BookingsController) Create(ctx context.Context, actor *types.Actor, body *types.CreateBookingRequestBody) (*models.Booking, int, error) {
	if actor == nil {
		return nil, http.StatusUnauthorized, types.ErrUnauthenticated
	}
	booking, status, err := c.build(ctx, actor, body, true)
	if err != nil {
		return nil, status, err
	}
	status, err = c.save(ctx, booking)
	if err != nil {
		return nil, status, err
	}
	log.Printf("[Bookings] Created booking [%s] for trip [%s]\n", booking.ID, booking.TripID)
	return booking, status, nil
}

// ListMine returns the actor's bookings newest first, each joined with the
// current state of its trip.
func (c *BookingsController) ListMine(ctx context.Context, actor *types.Actor) ([]models.Booking, int, error) {
	if actor == nil {
		return nil, http.StatusUnauthorized, types.ErrUnauthenticated
	}
	bookings, err := db.FindAll[models.Booking](ctx, c.deps.Store, types.COLLECTION_BOOKINGS,
		db.Where("userId", actor.ID).Newest("createdAt"))
	if err != nil {
		log.Printf("[Bookings] Error listing bookings for user [%s]: %s\n", actor.ID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.TripID)
	}
	trips := loadTrips(ctx, c.deps.Store, distinct(ids))
	for i := range bookings {
		bookings[i].Overlay(trips[bookings[i].TripID])
	}
	return bookings, http.StatusOK, nil
}

func (c *BookingsController) ListAll(ctx context.Context) ([]models.Booking, int, error) {
	bookings, err := db.FindAll[models.Booking](ctx, c.deps.Store, types.COLLECTION_BOOKINGS,
		db.Query{}.Newest("createdAt"))
	if err != nil {
		log.Printf("[Bookings] Error listing bookings: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return bookings, http.StatusOK, nil
}

func (c *BookingsController) UpdateStatus(ctx context.Context, id string, body *types.UpdateBookingStatusRequestBody) (*types.BookingStatusUpdate, int, error) {
	if !body.Status.Valid() {
		return nil, http.StatusBadRequest, types.NewValidationError("Invalid booking status")
	}
	if body.PaymentStatus != "" && !body.PaymentStatus.Valid() {
		return nil, http.StatusBadRequest, types.NewValidationError("Invalid payment status")
	}
	updates := []db.Update{
		{Path: "status", Value: body.Status},
		{Path: "updatedAt", Value: c.deps.Now()},
	}
	if body.PaymentStatus != "" {
		updates = append(updates, db.Update{Path: "paymentStatus", Value: body.PaymentStatus})
	}
	if err := c.deps.Store.Update(ctx, types.COLLECTION_BOOKINGS, id, updates); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, http.StatusNotFound, errors.New("Booking not found")
		}
		log.Printf("[Bookings] Error updating status of booking [%s]: %s\n", id, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return &types.BookingStatusUpdate{ID: id, Status: body.Status, PaymentStatus: body.PaymentStatus}, http.StatusOK, nil
}

func (c *BookingsController) qrcKey() ([]byte, error) {
	key, err := hex.DecodeString(c.deps.Config.QRCSecret)
	if err != nil {
		log.Printf("Could not read key from string: %s\n", err.Error())
		return nil, err
	}
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("pass key must be 16, 24 or 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Pass renders the boarding pass of a confirmed booking as a QR image and
// returns the path of the file.
func (c *BookingsController) Pass(ctx context.Context, actor *types.Actor, id string) (string, int, error) {
	if actor == nil {
		return "", http.StatusUnauthorized, types.ErrUnauthenticated
	}
	booking, err := db.GetByID[models.Booking](ctx, c.deps.Store, types.COLLECTION_BOOKINGS, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", http.StatusNotFound, errors.New("Booking not found")
		}
		log.Printf("[Bookings] Error fetching booking [%s]: %s\n", id, err.Error())
		return "", http.StatusInternalServerError, err
	}
	if booking.UserID != actor.ID {
		return "", http.StatusForbidden, errors.New("You do not have access to this booking")
	}
	if booking.Status != types.BOOKING_CONFIRMED {
		return "", http.StatusBadRequest, types.NewValidationError("A pass is only available for confirmed bookings")
	}
	key, err := c.qrcKey()
	if err != nil {
		return "", http.StatusInternalServerError, err
	}
	raw, _ := json.Marshal(map[string]string{
		"bookingId": booking.ID,
		"userId":    booking.UserID,
	})
	encryptedMessage, err := utils.EncryptMessage(key, string(raw))
	if err != nil {
		log.Printf("Error encrypting message: %s\n", err.Error())
		return "", http.StatusInternalServerError, err
	}
	qrc, err := qrcode.New(encryptedMessage)
	if err != nil {
		log.Printf("Error generating qrcode: %s\n", err.Error())
		return "", http.StatusInternalServerError, err
	}
	if err := os.MkdirAll(c.deps.Config.TempDir, 0o755); err != nil {
		log.Printf("Could not create temp dir [%s]: %s\n", c.deps.Config.TempDir, err.Error())
		return "", http.StatusInternalServerError, err
	}
	filepath := path.Join(c.deps.Config.TempDir, fmt.Sprintf("pass-%s.jpeg", booking.ID))
	if err = qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return "", http.StatusInternalServerError, err
	}
	return filepath, http.StatusOK, nil
}

// VerifyPass resolves a scanned pass back to its booking.
func (c *BookingsController) VerifyPass(ctx context.Context, code string) (*models.Booking, int, error) {
	key, err := c.qrcKey()
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	invalid := types.NewValidationError("Invalid pass")
	plain, err := utils.DecryptMessage(key, code)
	if err != nil || !gjson.Valid(*plain) {
		return nil, http.StatusBadRequest, invalid
	}
	bookingID := gjson.Get(*plain, "bookingId").String()
	userID := gjson.Get(*plain, "userId").String()
	if bookingID == "" {
		return nil, http.StatusBadRequest, invalid
	}
	booking, err := db.GetByID[models.Booking](ctx, c.deps.Store, types.COLLECTION_BOOKINGS, bookingID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, http.StatusNotFound, errors.New("Booking not found")
		}
		log.Printf("[Bookings] Error fetching booking [%s]: %s\n", bookingID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	if booking.UserID != userID {
		return nil, http.StatusBadRequest, invalid
	}
	return booking, http.StatusOK, nil
}
