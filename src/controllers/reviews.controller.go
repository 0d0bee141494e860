package controllers

import (
	"context"
	"ddtours/src/db"
	"ddtours/src/models"
	"ddtours/src/types"
	"ddtours/src/utils"
	"log"
	"net/http"
	"sync/atomic"
)

const (
	defaultRecentReviews = 3
	defaultTripReviews   = 20
	unknownTripTitle     = "Unknown Expedition"
)

type ReviewsController struct {
	deps Deps
}

// Submit stores a review and recomputes the trip aggregate from every review
// of the trip. A failed aggregate write leaves the review in place.
func (c *ReviewsController) Submit(ctx context.Context, actor *types.Actor, body *types.CreateReviewRequestBody) (*models.RatingAggregate, int, error) {
	if actor == nil {
		return nil, http.StatusUnauthorized, types.NewValidationError("User not authenticated.")
	}
	if body.TripID == "" {
		return nil, http.StatusBadRequest, types.NewValidationError("Trip ID is missing.")
	}
	if body.Rating == nil {
		return nil, http.StatusBadRequest, types.NewValidationError("Rating is required.")
	}
	if *body.Rating < 1 || *body.Rating > 5 {
		return nil, http.StatusBadRequest, types.NewValidationError("Rating must be between 1 and 5.")
	}
	trip, status, err := loadTrip(ctx, c.deps.Store, body.TripID, "Trip not found. Cannot review.")
	if err != nil {
		return nil, status, err
	}

	review := &models.Review{
		TripID:    trip.ID,
		TripTitle: trip.Title,
		TripImage: trip.FirstImage(),
		UserID:    actor.ID,
		UserName:  utils.DisplayName(actor.Name, actor.Email),
		UserPhoto: actor.Picture,
		Rating:    *body.Rating,
		Comment:   body.Comment,
		CreatedAt: c.deps.Now(),
	}
	id, err := c.deps.Store.Create(ctx, types.COLLECTION_REVIEWS, review)
	if err != nil {
		log.Printf("[Reviews] Error saving review for trip [%s]: %s\n", trip.ID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	review.SetID(id)

	agg, err := c.Recompute(ctx, trip.ID)
	if err != nil {
		c.deps.Metrics.AggregateFailures.Inc()
		log.Printf("[Reviews] Review [%s] saved but aggregate for trip [%s] failed: %s\n", id, trip.ID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return agg, http.StatusCreated, nil
}

// Recompute rescans all reviews of a trip and writes the rounded average and
// count onto the trip.
func (c *ReviewsController) Recompute(ctx context.Context, tripID string) (*models.RatingAggregate, error) {
	reviews, err := db.FindAll[models.Review](ctx, c.deps.Store, types.COLLECTION_REVIEWS, db.Where("tripId", tripID))
	if err != nil {
		return nil, err
	}
	agg := &models.RatingAggregate{TotalRatings: len(reviews)}
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		agg.AverageRating = utils.RoundTo(float64(sum)/float64(len(reviews)), 1)
	}
	err = c.deps.Store.Merge(ctx, types.COLLECTION_TRIPS, tripID, map[string]any{
		"averageRating": agg.AverageRating,
		"totalRatings":  agg.TotalRatings,
		"updatedAt":     c.deps.Now(),
	})
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// ReconcileAll recomputes the aggregate of every trip and returns how many
// were written.
func (c *ReviewsController) ReconcileAll(ctx context.Context) (int, int, error) {
	trips, err := db.FindAll[models.Trip](ctx, c.deps.Store, types.COLLECTION_TRIPS, db.Query{})
	if err != nil {
		log.Printf("[Reviews] Error listing trips for reconciliation: %s\n", err.Error())
		return 0, http.StatusInternalServerError, err
	}
	var done atomic.Int64
	g := newGroup(ctx)
	for _, trip := range trips {
		g.Go(func() error {
			if _, err := c.Recompute(ctx, trip.ID); err != nil {
				c.deps.Metrics.AggregateFailures.Inc()
				log.Printf("[Reviews] Error reconciling trip [%s]: %s\n", trip.ID, err.Error())
				return nil
			}
			done.Add(1)
			return nil
		})
	}
	g.Wait()
	log.Printf("[Reviews] Reconciled %d of %d trips\n", done.Load(), len(trips))
	return int(done.Load()), http.StatusOK, nil
}

// Reconcile is the scheduled form of ReconcileAll.
func (c *ReviewsController) Reconcile() {
	c.ReconcileAll(context.Background())
}

// Recent lists the newest reviews. In live mode each review carries the
// current title of its trip.
func (c *ReviewsController) Recent(ctx context.Context, q *types.ListQuery) ([]models.Review, int, error) {
	limit := q.Limit
	if limit < 1 {
		limit = defaultRecentReviews
	}
	reviews, err := db.FindAll[models.Review](ctx, c.deps.Store, types.COLLECTION_REVIEWS,
		db.Query{}.Newest("createdAt").Take(limit))
	if err != nil {
		log.Printf("[Reviews] Error listing recent reviews: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	if !q.Live {
		return reviews, http.StatusOK, nil
	}
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.TripID)
	}
	trips := loadTrips(ctx, c.deps.Store, distinct(ids))
	for i := range reviews {
		if trip, ok := trips[reviews[i].TripID]; ok {
			reviews[i].TripTitle = trip.Title
			continue
		}
		reviews[i].TripTitle = unknownTripTitle
	}
	return reviews, http.StatusOK, nil
}

func (c *ReviewsController) TripReviews(ctx context.Context, tripID string, q *types.ListQuery) ([]models.Review, int, error) {
	limit := q.Limit
	if limit < 1 {
		limit = defaultTripReviews
	}
	reviews, err := db.FindAll[models.Review](ctx, c.deps.Store, types.COLLECTION_REVIEWS,
		db.Where("tripId", tripID).Newest("createdAt").Take(limit))
	if err != nil {
		log.Printf("[Reviews] Error listing reviews of trip [%s]: %s\n", tripID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return reviews, http.StatusOK, nil
}
