package controllers

import (
	"ddtours/src/db"
	"ddtours/src/lib"
	"ddtours/src/models"
	"ddtours/src/types"
	"net/http"
)

func (s *ControllersSuite) TestCreateOrderPricesFromTrip() {
	tripID := s.seedTrip(models.Trip{Title: "Valley of Flowers", Price: 1000})

	order, status, err := s.c.Payments.CreateOrder(s.ctx, &types.CreateOrderRequestBody{TripID: tripID, Seats: 3, Amount: 5})
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Equal(int64(300000), order.Amount)
	s.Equal("INR", order.Currency)
	s.Contains(order.Receipt, "receipt_")

	order, _, err = s.c.Payments.CreateOrder(s.ctx, &types.CreateOrderRequestBody{Amount: 49.99})
	s.Require().NoError(err)
	s.Equal(int64(4999), order.Amount)

	_, status, _ = s.c.Payments.CreateOrder(s.ctx, &types.CreateOrderRequestBody{})
	s.Equal(http.StatusBadRequest, status)

	_, status, _ = s.c.Payments.CreateOrder(s.ctx, &types.CreateOrderRequestBody{TripID: "missing"})
	s.Equal(http.StatusNotFound, status)
}

func (s *ControllersSuite) bookingsForOrder(orderID string) []models.Booking {
	bookings, err := db.FindAll[models.Booking](s.ctx, s.store, types.COLLECTION_BOOKINGS, db.Where("orderId", orderID))
	s.Require().NoError(err)
	return bookings
}

func (s *ControllersSuite) TestVerifyRejectsTamperedSignature() {
	tripID := s.seedTrip(models.Trip{Title: "Roopkund", Price: 1000})
	sig := lib.SignRazorpayPayment(testRazorpaySecret, "order_1", "pay_1")
	tampered := []byte(sig)
	tampered[0] ^= 1

	for _, signature := range []string{string(tampered), "", lib.SignRazorpayPayment(testRazorpaySecret, "order_1", "pay_2")} {
		_, status, err := s.c.Payments.Verify(s.ctx, s.alice, &types.VerifyPaymentRequestBody{
			OrderID:        "order_1",
			PaymentID:      "pay_1",
			Signature:      signature,
			BookingDetails: types.CreateBookingRequestBody{TripID: tripID, Seats: 2},
		})
		s.Equal(http.StatusBadRequest, status)
		s.EqualError(err, "Invalid Signature")
	}
	s.Empty(s.bookingsForOrder("order_1"))
	s.Empty(s.notifier.confirmed)
}

func (s *ControllersSuite) TestVerifyConfirmsBookingOnce() {
	tripID := s.seedTrip(models.Trip{Title: "Roopkund", Price: 1000, ExpectedMonth: "2026-09"})
	s.gateway.paid["order_9"] = 300000
	body := &types.VerifyPaymentRequestBody{
		OrderID:   "order_9",
		PaymentID: "pay_9",
		Signature: lib.SignRazorpayPayment(testRazorpaySecret, "order_9", "pay_9"),
		BookingDetails: types.CreateBookingRequestBody{
			TripID:      tripID,
			Seats:       3,
			TotalAmount: 10,
			UserDetails: types.TravelerDetails{Name: "Alice A", Email: "alice@trek.in", Phone: "99"},
		},
	}

	res, status, err := s.c.Payments.Verify(s.ctx, s.alice, body)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Equal(res.Booking.ID, res.BookingID)
	s.Equal(types.BOOKING_CONFIRMED, res.Booking.Status)
	s.Equal(types.PAYMENT_PAID, res.Booking.PaymentStatus)
	s.Equal(types.PAYMENT_ONLINE, res.Booking.PaymentMethod)
	s.Equal(3000.0, res.Booking.TotalAmount)
	s.Equal("2026-09", res.Booking.TripDate)
	s.Equal("razorpay", res.Booking.Gateway)
	s.Equal("alice@trek.in", res.Booking.UserDetails.Email)
	s.Equal([]string{res.BookingID}, s.notifier.confirmed)

	replay, status, err := s.c.Payments.Verify(s.ctx, s.alice, body)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.True(replay.Replayed)
	s.Equal(res.BookingID, replay.BookingID)
	s.Len(s.bookingsForOrder("order_9"), 1)
	s.Len(s.notifier.confirmed, 1)
}

func (s *ControllersSuite) TestVerifyMissingTrip() {
	_, status, err := s.c.Payments.Verify(s.ctx, s.alice, &types.VerifyPaymentRequestBody{
		OrderID:        "order_2",
		PaymentID:      "pay_2",
		Signature:      lib.SignRazorpayPayment(testRazorpaySecret, "order_2", "pay_2"),
		BookingDetails: types.CreateBookingRequestBody{TripID: "missing", Seats: 1},
	})
	s.Error(err)
	s.Equal(http.StatusNotFound, status)
	s.Empty(s.bookingsForOrder("order_2"))
}

func (s *ControllersSuite) TestVerifyRejectsUnderpaidOrder() {
	tripID := s.seedTrip(models.Trip{Title: "Kedarkantha", Price: 1000})

	order, _, err := s.c.Payments.CreateOrder(s.ctx, &types.CreateOrderRequestBody{Amount: 1})
	s.Require().NoError(err)
	s.Equal(int64(100), order.Amount)

	_, status, err := s.c.Payments.Verify(s.ctx, s.alice, &types.VerifyPaymentRequestBody{
		OrderID:        order.ID,
		PaymentID:      "pay_cheap",
		Signature:      lib.SignRazorpayPayment(testRazorpaySecret, order.ID, "pay_cheap"),
		BookingDetails: types.CreateBookingRequestBody{TripID: tripID, Seats: 3},
	})
	s.Equal(http.StatusBadRequest, status)
	s.EqualError(err, "Paid amount does not cover the booking total")
	s.Empty(s.bookingsForOrder(order.ID))
	s.Empty(s.notifier.confirmed)

	order, _, err = s.c.Payments.CreateOrder(s.ctx, &types.CreateOrderRequestBody{TripID: tripID, Seats: 3})
	s.Require().NoError(err)
	res, status, err := s.c.Payments.Verify(s.ctx, s.alice, &types.VerifyPaymentRequestBody{
		OrderID:        order.ID,
		PaymentID:      "pay_full",
		Signature:      lib.SignRazorpayPayment(testRazorpaySecret, order.ID, "pay_full"),
		BookingDetails: types.CreateBookingRequestBody{TripID: tripID, Seats: 3},
	})
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Equal(3000.0, res.Booking.TotalAmount)
}

func (s *ControllersSuite) TestVerifyReplayByAnotherUser() {
	tripID := s.seedTrip(models.Trip{Title: "Har Ki Dun", Price: 1000})
	s.gateway.paid["order_7"] = 100000
	body := &types.VerifyPaymentRequestBody{
		OrderID:        "order_7",
		PaymentID:      "pay_7",
		Signature:      lib.SignRazorpayPayment(testRazorpaySecret, "order_7", "pay_7"),
		BookingDetails: types.CreateBookingRequestBody{TripID: tripID, Seats: 1},
	}
	_, status, err := s.c.Payments.Verify(s.ctx, s.alice, body)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)

	res, status, err := s.c.Payments.Verify(s.ctx, s.bob, body)
	s.Nil(res)
	s.Equal(http.StatusForbidden, status)
	s.EqualError(err, "This payment belongs to another booking")
	s.Len(s.bookingsForOrder("order_7"), 1)
}
