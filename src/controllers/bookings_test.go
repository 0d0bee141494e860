package controllers

import (
	"ddtours/src/db"
	"ddtours/src/lib"
	"ddtours/src/models"
	"ddtours/src/types"
	"net/http"
	"os"
)

func (s *ControllersSuite) TestCreateBookingUsesServerPrice() {
	tripID := s.seedTrip(models.Trip{Title: "Hampta Pass", Price: 1000, FixedDate: "2026-06-10"})

	booking, status, err := s.c.Bookings.Create(s.ctx, s.alice, &types.CreateBookingRequestBody{
		TripID:      tripID,
		Seats:       3,
		TotalAmount: 1,
	})
	s.Require().NoError(err)
	s.Equal(http.StatusCreated, status)
	s.NotEmpty(booking.ID)
	s.Equal(3000.0, booking.TotalAmount)
	s.Equal(1000.0, booking.UnitPrice)
	s.Equal("2026-06-10", booking.TripDate)
	s.Equal(types.PAYMENT_PAY_ON_ARRIVAL, booking.PaymentMethod)
	s.Equal(types.PAYMENT_PENDING, booking.PaymentStatus)
	s.Equal(types.BOOKING_PENDING, booking.Status)
	s.Equal("alice@example.com", booking.UserDetails.Email)

	single, _, err := s.c.Bookings.Create(s.ctx, s.alice, &types.CreateBookingRequestBody{TripID: tripID, Seats: 1})
	s.Require().NoError(err)
	s.Equal(1000.0, single.TotalAmount)

	stored, err := db.GetByID[models.Booking](s.ctx, s.store, types.COLLECTION_BOOKINGS, booking.ID)
	s.Require().NoError(err)
	again, err := db.GetByID[models.Booking](s.ctx, s.store, types.COLLECTION_BOOKINGS, booking.ID)
	s.Require().NoError(err)
	s.Equal(stored, again)
	s.Equal(3000.0, stored.TotalAmount)
}

func (s *ControllersSuite) TestCreateBookingRejections() {
	_, status, err := s.c.Bookings.Create(s.ctx, nil, &types.CreateBookingRequestBody{TripID: "x", Seats: 1})
	s.Error(err)
	s.Equal(http.StatusUnauthorized, status)

	_, status, err = s.c.Bookings.Create(s.ctx, s.alice, &types.CreateBookingRequestBody{TripID: "missing", Seats: 1})
	s.EqualError(err, "Trip not found")
	s.Equal(http.StatusNotFound, status)

	open := s.seedTrip(models.Trip{Title: "Open", Price: 10})
	_, status, _ = s.c.Bookings.Create(s.ctx, s.alice, &types.CreateBookingRequestBody{TripID: open, Seats: 0})
	s.Equal(http.StatusBadRequest, status)

	cancelled := s.seedTrip(models.Trip{Title: "Cancelled", Price: 10, Status: types.TRIP_CANCELLED})
	_, status, _ = s.c.Bookings.Create(s.ctx, s.alice, &types.CreateBookingRequestBody{TripID: cancelled, Seats: 1})
	s.Equal(http.StatusBadRequest, status)

	closed := s.seedTrip(models.Trip{Title: "Closed", Price: 10, BookingCutoff: "2026-04-30"})
	_, status, err = s.c.Bookings.Create(s.ctx, s.alice, &types.CreateBookingRequestBody{TripID: closed, Seats: 1})
	s.Equal(http.StatusBadRequest, status)
	s.EqualError(err, "Bookings are closed for this trip")

	bookings, _, err := s.c.Bookings.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(bookings)
}

func (s *ControllersSuite) TestListMineIsolatesUsersAndOverlaysTrips() {
	kept := s.seedTrip(models.Trip{Title: "Kedarkantha", Price: 500, ExpectedMonth: "2026-12"})
	gone := s.seedTrip(models.Trip{Title: "Old Route", Price: 700, FixedDate: "2026-07-01"})

	for _, tripID := range []string{kept, gone} {
		_, _, err := s.c.Bookings.Create(s.ctx, s.alice, &types.CreateBookingRequestBody{TripID: tripID, Seats: 1})
		s.Require().NoError(err)
	}
	_, _, err := s.c.Bookings.Create(s.ctx, s.bob, &types.CreateBookingRequestBody{TripID: kept, Seats: 2})
	s.Require().NoError(err)

	s.Require().NoError(s.store.Merge(s.ctx, types.COLLECTION_TRIPS, kept, map[string]any{
		"title":         "Kedarkantha Winter",
		"fixedDate":     "2026-12-20",
		"expectedMonth": "",
		"scheduleMode":  types.SCHEDULE_FIXED,
	}))
	s.Require().NoError(s.store.Delete(s.ctx, types.COLLECTION_TRIPS, gone))

	mine, status, err := s.c.Bookings.ListMine(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Require().Len(mine, 2)
	for _, b := range mine {
		s.Equal("alice", b.UserID)
	}
	// newest first
	s.Equal(gone, mine[0].TripID)
	s.False(mine[0].Live.Available)
	s.Equal("Old Route", mine[0].Live.Title)
	s.Equal("2026-07-01", mine[0].Live.TripDate)

	s.True(mine[1].Live.Available)
	s.Equal("Kedarkantha Winter", mine[1].Live.Title)
	s.Equal("2026-12-20", mine[1].Live.TripDate)
	s.Equal("Kedarkantha", mine[1].TripTitle)
	s.Equal("2026-12", mine[1].TripDate)

	theirs, _, err := s.c.Bookings.ListMine(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Require().Len(theirs, 1)
	s.Equal("bob", theirs[0].UserID)

	stored, err := db.GetByID[models.Booking](s.ctx, s.store, types.COLLECTION_BOOKINGS, mine[1].ID)
	s.Require().NoError(err)
	s.Nil(stored.Live)
	s.Equal("Kedarkantha", stored.TripTitle)
}

func (s *ControllersSuite) TestUpdateStatus() {
	tripID := s.seedTrip(models.Trip{Title: "Triund", Price: 100})
	booking, _, err := s.c.Bookings.Create(s.ctx, s.alice, &types.CreateBookingRequestBody{TripID: tripID, Seats: 1})
	s.Require().NoError(err)

	res, status, err := s.c.Bookings.UpdateStatus(s.ctx, booking.ID, &types.UpdateBookingStatusRequestBody{
		Status:        types.BOOKING_CONFIRMED,
		PaymentStatus: types.PAYMENT_PAID,
	})
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Equal(booking.ID, res.ID)

	stored, err := db.GetByID[models.Booking](s.ctx, s.store, types.COLLECTION_BOOKINGS, booking.ID)
	s.Require().NoError(err)
	s.Equal(types.BOOKING_CONFIRMED, stored.Status)
	s.Equal(types.PAYMENT_PAID, stored.PaymentStatus)
	s.Equal(1, stored.Seats)

	_, status, err = s.c.Bookings.UpdateStatus(s.ctx, "nope", &types.UpdateBookingStatusRequestBody{Status: types.BOOKING_CANCELLED})
	s.Error(err)
	s.Equal(http.StatusNotFound, status)

	_, status, _ = s.c.Bookings.UpdateStatus(s.ctx, booking.ID, &types.UpdateBookingStatusRequestBody{Status: "shipped"})
	s.Equal(http.StatusBadRequest, status)
}

func (s *ControllersSuite) confirmedBooking() *models.Booking {
	tripID := s.seedTrip(models.Trip{Title: "Chopta", Price: 2500})
	s.gateway.paid["order_pass"] = 250000
	res, _, err := s.c.Payments.Verify(s.ctx, s.alice, &types.VerifyPaymentRequestBody{
		OrderID:        "order_pass",
		PaymentID:      "pay_pass",
		Signature:      lib.SignRazorpayPayment(testRazorpaySecret, "order_pass", "pay_pass"),
		BookingDetails: types.CreateBookingRequestBody{TripID: tripID, Seats: 1},
	})
	s.Require().NoError(err)
	return res.Booking
}

func (s *ControllersSuite) TestBookingPass() {
	booking := s.confirmedBooking()

	file, status, err := s.c.Bookings.Pass(s.ctx, s.alice, booking.ID)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	info, err := os.Stat(file)
	s.Require().NoError(err)
	s.Positive(info.Size())

	_, status, _ = s.c.Bookings.Pass(s.ctx, s.bob, booking.ID)
	s.Equal(http.StatusForbidden, status)

	_, status, _ = s.c.Bookings.Pass(s.ctx, s.alice, "missing")
	s.Equal(http.StatusNotFound, status)

	tripID := s.seedTrip(models.Trip{Title: "Pending", Price: 1})
	pending, _, err := s.c.Bookings.Create(s.ctx, s.alice, &types.CreateBookingRequestBody{TripID: tripID, Seats: 1})
	s.Require().NoError(err)
	_, status, _ = s.c.Bookings.Pass(s.ctx, s.alice, pending.ID)
	s.Equal(http.StatusBadRequest, status)
}

func (s *ControllersSuite) TestVerifyPass() {
	booking := s.confirmedBooking()
	code := s.encryptPass(`{"bookingId":"` + booking.ID + `","userId":"alice"}`)

	found, status, err := s.c.Bookings.VerifyPass(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Equal(booking.ID, found.ID)

	forged := s.encryptPass(`{"bookingId":"` + booking.ID + `","userId":"bob"}`)
	_, status, _ = s.c.Bookings.VerifyPass(s.ctx, forged)
	s.Equal(http.StatusBadRequest, status)

	_, status, _ = s.c.Bookings.VerifyPass(s.ctx, "deadbeef")
	s.Equal(http.StatusBadRequest, status)
}
