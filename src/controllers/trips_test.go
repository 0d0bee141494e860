package controllers

import (
	"ddtours/src/models"
	"ddtours/src/types"
	"net/http"
	"strings"
)

func (s *ControllersSuite) createTrip(files map[string]string) *models.Trip {
	trip, status, err := s.c.Trips.Create(s.ctx, &types.TripForm{
		Title:         ptr("Kashmir Great Lakes"),
		Price:         ptr(15000.0),
		FixedDate:     ptr("2026-08-01"),
		ExpectedMonth: ptr("2026-08"),
		IncludedItems: ptr(`["Meals","Tents"]`),
		PlacesCovered: ptr("Sonamarg, Gadsar ,"),
		Images:        imageForm(files),
	})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, status)
	return trip
}

func (s *ControllersSuite) TestCreateTrip() {
	trip := s.createTrip(map[string]string{"a.jpg": "image/jpeg", "b.png": "image/png"})

	s.NotEmpty(trip.ID)
	s.Len(trip.Images, 2)
	s.Equal(2, s.images.count())
	for _, img := range trip.Images {
		s.True(strings.HasPrefix(img.ID, "trips/kashmir-great-lakes-"))
	}
	s.Equal(types.SCHEDULE_FIXED, trip.ScheduleMode)
	s.Empty(trip.ExpectedMonth)
	s.Equal("TBD", trip.Duration)
	s.Equal(types.TRIP_SCHEDULED, trip.Status)
	s.Equal([]string{"Meals", "Tents"}, trip.IncludedItems)
	s.Equal([]string{"Sonamarg", "Gadsar"}, trip.PlacesCovered)

	stored, status, err := s.c.Trips.Get(s.ctx, trip.ID)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Equal(trip.Images, stored.Images)
}

func (s *ControllersSuite) TestCreateTripValidation() {
	tooMany := map[string]string{}
	for _, n := range []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg"} {
		tooMany[n] = "image/jpeg"
	}
	cases := []*types.TripForm{
		{Price: ptr(1.0), Images: imageForm(map[string]string{"a.jpg": "image/jpeg"})},
		{Title: ptr("No price"), Images: imageForm(map[string]string{"a.jpg": "image/jpeg"})},
		{Title: ptr("No images"), Price: ptr(1.0)},
		{Title: ptr("Too many"), Price: ptr(1.0), Images: imageForm(tooMany)},
		{Title: ptr("Not an image"), Price: ptr(1.0), Images: imageForm(map[string]string{"a.pdf": "application/pdf"})},
	}
	for _, form := range cases {
		_, status, err := s.c.Trips.Create(s.ctx, form)
		s.Error(err)
		s.Equal(http.StatusBadRequest, status)
	}
	s.Zero(s.images.count())

	s.cfg.MaxImageBytes = 4
	_, status, _ := s.c.Trips.Create(s.ctx, &types.TripForm{Title: ptr("Big"), Price: ptr(1.0), Images: imageForm(map[string]string{"a.jpg": "image/jpeg"})})
	s.Equal(http.StatusBadRequest, status)
}

func (s *ControllersSuite) TestCreateTripUploadFailure() {
	s.images.failUpload = true
	_, status, err := s.c.Trips.Create(s.ctx, &types.TripForm{Title: ptr("T"), Price: ptr(1.0), Images: imageForm(map[string]string{"a.jpg": "image/jpeg"})})
	s.Error(err)
	s.Equal(http.StatusInternalServerError, status)
	trips, _, err := s.c.Trips.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(trips)
}

func (s *ControllersSuite) TestUpdateTrip() {
	trip := s.createTrip(map[string]string{"a.jpg": "image/jpeg"})
	oldKey := trip.Images[0].ID

	updated, status, err := s.c.Trips.Update(s.ctx, trip.ID, &types.TripForm{
		Price:     ptr(18000.0),
		FixedDate: ptr(""),
		Images:    imageForm(map[string]string{"new.webp": "image/webp"}),
	})
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Equal(18000.0, updated.Price)
	s.Equal("Kashmir Great Lakes", updated.Title)
	s.Equal(types.SCHEDULE_UNSCHEDULED, updated.ScheduleMode)
	s.Require().Len(updated.Images, 1)
	s.NotEqual(oldKey, updated.Images[0].ID)
	s.Equal(1, s.images.count())
	s.False(s.images.stored[oldKey])

	stored := s.trip(trip.ID)
	s.Equal(updated.Images, stored.Images)
	s.Equal(types.TRIP_DATE_TBD, stored.EffectiveDate())

	_, status, _ = s.c.Trips.Update(s.ctx, "missing", &types.TripForm{Price: ptr(1.0)})
	s.Equal(http.StatusNotFound, status)
}

func (s *ControllersSuite) TestUpdateTripKeepsRatings() {
	trip := s.createTrip(map[string]string{"a.jpg": "image/jpeg"})
	_, _, err := s.c.Reviews.Submit(s.ctx, s.alice, &types.CreateReviewRequestBody{TripID: trip.ID, Rating: ptr(4)})
	s.Require().NoError(err)

	_, _, err = s.c.Trips.Update(s.ctx, trip.ID, &types.TripForm{Title: ptr("KGL")})
	s.Require().NoError(err)
	stored := s.trip(trip.ID)
	s.Equal("KGL", stored.Title)
	s.Equal(1, stored.TotalRatings)
	s.Equal(4.0, stored.AverageRating)
}

func (s *ControllersSuite) TestDeleteTripCascades() {
	trip := s.createTrip(map[string]string{"a.jpg": "image/jpeg", "b.jpg": "image/jpeg"})

	status, err := s.c.Trips.Delete(s.ctx, trip.ID)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Zero(s.images.count())

	_, status, err = s.c.Trips.Get(s.ctx, trip.ID)
	s.Error(err)
	s.Equal(http.StatusNotFound, status)

	status, _ = s.c.Trips.Delete(s.ctx, trip.ID)
	s.Equal(http.StatusNotFound, status)
}

func (s *ControllersSuite) TestDeleteTripPartialFailure() {
	trip := s.createTrip(map[string]string{"a.jpg": "image/jpeg", "b.jpg": "image/jpeg"})
	stuck := trip.Images[1]
	s.images.failDelete[stuck.ID] = true

	status, err := s.c.Trips.Delete(s.ctx, trip.ID)
	s.ErrorIs(err, ErrPartialImageDelete)
	s.Equal(http.StatusBadGateway, status)

	stored := s.trip(trip.ID)
	s.Equal([]models.TripImage{stuck}, stored.Images)
	s.Equal(1, s.images.count())

	delete(s.images.failDelete, stuck.ID)
	status, err = s.c.Trips.Delete(s.ctx, trip.ID)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Zero(s.images.count())
}
