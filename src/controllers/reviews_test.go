package controllers

import (
	"ddtours/src/db"
	"ddtours/src/models"
	"ddtours/src/types"
	"net/http"
)

func (s *ControllersSuite) TestSubmitReviewRecomputesAggregate() {
	tripID := s.seedTrip(models.Trip{
		Title:  "Sandakphu",
		Price:  100,
		Images: []models.TripImage{{URL: "https://cdn.test/a.jpg", ID: "a.jpg"}},
	})

	var agg *models.RatingAggregate
	for i, rating := range []int{5, 4, 3} {
		var status int
		var err error
		agg, status, err = s.c.Reviews.Submit(s.ctx, s.alice, &types.CreateReviewRequestBody{TripID: tripID, Rating: ptr(rating), Comment: "great"})
		s.Require().NoError(err)
		s.Equal(http.StatusCreated, status)
		s.Equal(i+1, agg.TotalRatings)
	}
	s.Equal(4.0, agg.AverageRating)
	s.Equal(3, agg.TotalRatings)

	trip := s.trip(tripID)
	s.Equal(4.0, trip.AverageRating)
	s.Equal(3, trip.TotalRatings)

	agg, _, err := s.c.Reviews.Submit(s.ctx, s.bob, &types.CreateReviewRequestBody{TripID: tripID, Rating: ptr(5)})
	s.Require().NoError(err)
	s.Equal(4.3, agg.AverageRating)

	reviews, _, err := s.c.Reviews.TripReviews(s.ctx, tripID, &types.ListQuery{})
	s.Require().NoError(err)
	s.Require().Len(reviews, 4)
	s.Equal("bob", reviews[0].UserName)
	s.Equal("Sandakphu", reviews[0].TripTitle)
	s.Equal("https://cdn.test/a.jpg", reviews[0].TripImage)
	s.Equal("Alice", reviews[1].UserName)
}

func (s *ControllersSuite) TestSubmitReviewValidation() {
	tripID := s.seedTrip(models.Trip{Title: "Sandakphu", Price: 100})
	cases := []struct {
		actor   *types.Actor
		body    types.CreateReviewRequestBody
		status  int
		message string
	}{
		{nil, types.CreateReviewRequestBody{TripID: tripID, Rating: ptr(4)}, http.StatusUnauthorized, "User not authenticated."},
		{s.alice, types.CreateReviewRequestBody{Rating: ptr(4)}, http.StatusBadRequest, "Trip ID is missing."},
		{s.alice, types.CreateReviewRequestBody{TripID: tripID}, http.StatusBadRequest, "Rating is required."},
		{s.alice, types.CreateReviewRequestBody{TripID: tripID, Rating: ptr(0)}, http.StatusBadRequest, "Rating must be between 1 and 5."},
		{s.alice, types.CreateReviewRequestBody{TripID: tripID, Rating: ptr(6)}, http.StatusBadRequest, "Rating must be between 1 and 5."},
		{s.alice, types.CreateReviewRequestBody{TripID: "missing", Rating: ptr(4)}, http.StatusNotFound, "Trip not found. Cannot review."},
	}
	for _, tc := range cases {
		_, status, err := s.c.Reviews.Submit(s.ctx, tc.actor, &tc.body)
		s.Equal(tc.status, status)
		s.EqualError(err, tc.message)
	}
	reviews, err := db.FindAll[models.Review](s.ctx, s.store, types.COLLECTION_REVIEWS, db.Query{})
	s.Require().NoError(err)
	s.Empty(reviews)
}

func (s *ControllersSuite) TestAggregateFailureKeepsReviewAndReconciles() {
	tripID := s.seedTrip(models.Trip{Title: "Har Ki Dun", Price: 100})

	s.store.failTripMerge = true
	_, status, err := s.c.Reviews.Submit(s.ctx, s.alice, &types.CreateReviewRequestBody{TripID: tripID, Rating: ptr(2)})
	s.Error(err)
	s.Equal(http.StatusInternalServerError, status)

	reviews, _, err := s.c.Reviews.TripReviews(s.ctx, tripID, &types.ListQuery{})
	s.Require().NoError(err)
	s.Len(reviews, 1)
	s.Equal(0, s.trip(tripID).TotalRatings)

	s.store.failTripMerge = false
	done, status, err := s.c.Reviews.ReconcileAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)
	s.Equal(1, done)
	trip := s.trip(tripID)
	s.Equal(1, trip.TotalRatings)
	s.Equal(2.0, trip.AverageRating)
}

func (s *ControllersSuite) TestRecentReviews() {
	kept := s.seedTrip(models.Trip{Title: "Brahmatal", Price: 100})
	gone := s.seedTrip(models.Trip{Title: "Gone", Price: 100})
	for _, id := range []string{kept, kept, gone, kept} {
		_, _, err := s.c.Reviews.Submit(s.ctx, s.alice, &types.CreateReviewRequestBody{TripID: id, Rating: ptr(5)})
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.Merge(s.ctx, types.COLLECTION_TRIPS, kept, map[string]any{"title": "Brahmatal Lake"}))
	s.Require().NoError(s.store.Delete(s.ctx, types.COLLECTION_TRIPS, gone))

	recent, _, err := s.c.Reviews.Recent(s.ctx, &types.ListQuery{})
	s.Require().NoError(err)
	s.Len(recent, 3)
	s.Equal("Brahmatal", recent[0].TripTitle)

	live, _, err := s.c.Reviews.Recent(s.ctx, &types.ListQuery{Limit: 10, Live: true})
	s.Require().NoError(err)
	s.Require().Len(live, 4)
	s.Equal("Brahmatal Lake", live[0].TripTitle)
	s.Equal(unknownTripTitle, live[1].TripTitle)
}
