package controllers

import (
	"context"
	"ddtours/src/config"
	"ddtours/src/db"
	"ddtours/src/lib"
	awslib "ddtours/src/lib/aws"
	"ddtours/src/models"
	"ddtours/src/types"
	"errors"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// overlayConcurrency bounds the trip reads issued per request when joining
// live trip data.
const overlayConcurrency = 8

// BookingNotifier is told about bookings after they are committed. It must
// not block the caller.
type BookingNotifier interface {
	BookingConfirmed(b *models.Booking)
}

type Deps struct {
	Config   *config.Config
	Store    db.Store
	Images   awslib.ImageStore
	Gateway  lib.PaymentGateway
	Notifier BookingNotifier
	Users    lib.UserDirectory
	Metrics  *lib.Metrics
	Now      func() time.Time
}

type Controllers struct {
	Admin    *AdminController
	Trips    *TripsController
	Bookings *BookingsController
	Payments *PaymentsController
	Reviews  *ReviewsController
	Blogs    *BlogsController
	Users    *UsersController
}

func New(d Deps) *Controllers {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Metrics == nil {
		d.Metrics = lib.GetMetrics()
	}
	bookings := &BookingsController{deps: d}
	return &Controllers{
		Admin:    &AdminController{deps: d},
		Trips:    &TripsController{deps: d},
		Bookings: bookings,
		Payments: &PaymentsController{deps: d, bookings: bookings},
		Reviews:  &ReviewsController{deps: d},
		Blogs:    &BlogsController{deps: d},
		Users:    &UsersController{deps: d},
	}
}

func loadTrip(ctx context.Context, store db.Store, id, missing string) (*models.Trip, int, error) {
	trip, err := db.GetByID[models.Trip](ctx, store, types.COLLECTION_TRIPS, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, http.StatusNotFound, errors.New(missing)
		}
		log.Printf("[Trips] Error fetching trip [%s]: %s\n", id, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return trip, http.StatusOK, nil
}

// loadTrips reads each distinct trip id concurrently. Trips that cannot be
// read are absent from the result.
func loadTrips(ctx context.Context, store db.Store, ids []string) map[string]*models.Trip {
	out := make(map[string]*models.Trip, len(ids))
	results := make([]*models.Trip, len(ids))
	g := newGroup(ctx)
	for i, id := range ids {
		g.Go(func() error {
			trip, err := db.GetByID[models.Trip](ctx, store, types.COLLECTION_TRIPS, id)
			if err != nil {
				if !errors.Is(err, db.ErrNotFound) {
					log.Printf("[Trips] Error fetching trip [%s] for overlay: %s\n", id, err.Error())
				}
				return nil
			}
			results[i] = trip
			return nil
		})
	}
	g.Wait()
	for i, id := range ids {
		if results[i] != nil {
			out[id] = results[i]
		}
	}
	return out
}

func newGroup(ctx context.Context) *errgroup.Group {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(overlayConcurrency)
	return g
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
