package controllers

import (
	"context"
	"ddtours/src/db"
	"ddtours/src/models"
	"ddtours/src/types"
	"ddtours/src/utils"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
)

const tripImagePrefix = "trips"

var ErrPartialImageDelete = errors.New("Some trip images could not be deleted. The trip was kept with the remaining images.")

type TripsController struct {
	deps Deps
}

func (c *TripsController) List(ctx context.Context) ([]models.Trip, int, error) {
	trips, err := db.FindAll[models.Trip](ctx, c.deps.Store, types.COLLECTION_TRIPS, db.Query{}.Newest("createdAt"))
	if err != nil {
		log.Printf("[Trips] Error listing trips: %s\n", err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return trips, http.StatusOK, nil
}

func (c *TripsController) Get(ctx context.Context, id string) (*models.Trip, int, error) {
	return loadTrip(ctx, c.deps.Store, id, "Trip not found")
}

func (c *TripsController) validateImages(files []*multipart.FileHeader) error {
	if len(files) > c.deps.Config.MaxImages {
		return types.NewValidationError(fmt.Sprintf("A trip can have at most %d images", c.deps.Config.MaxImages))
	}
	for _, fh := range files {
		if fh.Size > c.deps.Config.MaxImageBytes {
			return types.NewValidationError(fmt.Sprintf("Image %s is larger than %dMB", fh.Filename, c.deps.Config.MaxImageBytes>>20))
		}
		if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
			return types.NewValidationError(fmt.Sprintf("File %s is not an image", fh.Filename))
		}
	}
	return nil
}

// uploadImages stores every file concurrently. On failure the images that did
// upload are removed again.
func (c *TripsController) uploadImages(ctx context.Context, title string, files []*multipart.FileHeader) ([]models.TripImage, error) {
	images := make([]models.TripImage, len(files))
	uploaded := make([]bool, len(files))
	g := newGroup(ctx)
	for i, fh := range files {
		g.Go(func() error {
			f, err := fh.Open()
			if err != nil {
				return err
			}
			defer f.Close()
			key := utils.ObjectKey(tripImagePrefix, utils.Slugify(title)+"-"+fh.Filename)
			img, err := c.deps.Images.Upload(ctx, key, f, fh.Size, fh.Header.Get("Content-Type"))
			if err != nil {
				return err
			}
			images[i] = *img
			uploaded[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("[Trips] Error uploading images: %s\n", err.Error())
		var orphans []models.TripImage
		for i, ok := range uploaded {
			if ok {
				orphans = append(orphans, images[i])
			}
		}
		c.deleteImages(context.WithoutCancel(ctx), orphans)
		return nil, err
	}
	return images, nil
}

// deleteImages removes images concurrently and returns the ones that could
// not be deleted.
func (c *TripsController) deleteImages(ctx context.Context, images []models.TripImage) []models.TripImage {
	var mu sync.Mutex
	var remaining []models.TripImage
	g := newGroup(ctx)
	for _, img := range images {
		g.Go(func() error {
			if err := c.deps.Images.Delete(ctx, img.ID); err != nil {
				log.Printf("[Trips] Error deleting image [%s]: %s\n", img.ID, err.Error())
				mu.Lock()
				remaining = append(remaining, img)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return remaining
}

// apply copies the submitted fields onto trip and renormalises its schedule.
func apply(trip *models.Trip, form *types.TripForm) {
	if form.Title != nil {
		trip.Title = strings.TrimSpace(*form.Title)
	}
	if form.Description != nil {
		trip.Description = *form.Description
	}
	if form.Price != nil {
		trip.Price = *form.Price
	}
	if form.Duration != nil {
		trip.Duration = *form.Duration
	}
	if form.Location != nil {
		trip.Location = *form.Location
	}
	if form.Status != nil {
		trip.Status = *form.Status
	}
	if form.FixedDate != nil {
		trip.FixedDate = *form.FixedDate
	}
	if form.ExpectedMonth != nil {
		trip.ExpectedMonth = *form.ExpectedMonth
	}
	if form.BookingCutoff != nil {
		trip.BookingCutoff = *form.BookingCutoff
	}
	if form.IncludedItems != nil {
		trip.IncludedItems = utils.ParseList(*form.IncludedItems)
	}
	if form.PlacesCovered != nil {
		trip.PlacesCovered = utils.ParseList(*form.PlacesCovered)
	}
	trip.NormalizeSchedule()
}

func (c *TripsController) Create(ctx context.Context, form *types.TripForm) (*models.Trip, int, error) {
	if form.Title == nil || strings.TrimSpace(*form.Title) == "" {
		return nil, http.StatusBadRequest, types.NewValidationError("Title is required")
	}
	if form.Price == nil {
		return nil, http.StatusBadRequest, types.NewValidationError("Price is required")
	}
	if len(form.Images) == 0 {
		return nil, http.StatusBadRequest, types.NewValidationError("At least one image is required")
	}
	if err := c.validateImages(form.Images); err != nil {
		return nil, http.StatusBadRequest, err
	}

	now := c.deps.Now()
	trip := &models.Trip{
		Duration:      "TBD",
		Location:      "TBD",
		Status:        types.TRIP_SCHEDULED,
		IncludedItems: []string{},
		PlacesCovered: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	apply(trip, form)

	images, err := c.uploadImages(ctx, trip.Title, form.Images)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	trip.Images = images

	id, err := c.deps.Store.Create(ctx, types.COLLECTION_TRIPS, trip)
	if err != nil {
		log.Printf("[Trips] Error saving trip: %s\n", err.Error())
		c.deleteImages(context.WithoutCancel(ctx), images)
		return nil, http.StatusInternalServerError, err
	}
	trip.SetID(id)
	log.Printf("[Trips] Created trip [%s] with %d images\n", id, len(images))
	return trip, http.StatusCreated, nil
}

// Update applies a partial update. New images replace the stored ones; the
// old images are deleted only after the trip is written.
func (c *TripsController) Update(ctx context.Context, id string, form *types.TripForm) (*models.Trip, int, error) {
	if form.Title != nil && strings.TrimSpace(*form.Title) == "" {
		return nil, http.StatusBadRequest, types.NewValidationError("Title cannot be empty")
	}
	if err := c.validateImages(form.Images); err != nil {
		return nil, http.StatusBadRequest, err
	}
	trip, status, err := loadTrip(ctx, c.deps.Store, id, "Trip not found")
	if err != nil {
		return nil, status, err
	}
	apply(trip, form)
	trip.UpdatedAt = c.deps.Now()

	var replaced []models.TripImage
	if len(form.Images) > 0 {
		images, err := c.uploadImages(ctx, trip.Title, form.Images)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		replaced = trip.Images
		trip.Images = images
	}

	err = c.deps.Store.Merge(ctx, types.COLLECTION_TRIPS, id, map[string]any{
		"title":         trip.Title,
		"description":   trip.Description,
		"price":         trip.Price,
		"duration":      trip.Duration,
		"location":      trip.Location,
		"status":        trip.Status,
		"scheduleMode":  trip.ScheduleMode,
		"fixedDate":     trip.FixedDate,
		"expectedMonth": trip.ExpectedMonth,
		"bookingCutoff": trip.BookingCutoff,
		"includedItems": trip.IncludedItems,
		"placesCovered": trip.PlacesCovered,
		"images":        trip.Images,
		"updatedAt":     trip.UpdatedAt,
	})
	if err != nil {
		log.Printf("[Trips] Error updating trip [%s]: %s\n", id, err.Error())
		if replaced != nil {
			c.deleteImages(context.WithoutCancel(ctx), trip.Images)
		}
		return nil, http.StatusInternalServerError, err
	}
	if len(replaced) > 0 {
		c.deleteImages(ctx, replaced)
	}
	return trip, http.StatusOK, nil
}

// Delete removes the trip images and then the trip. If any image survives
// the trip is kept, pointing only at the surviving images.
func (c *TripsController) Delete(ctx context.Context, id string) (int, error) {
	trip, status, err := loadTrip(ctx, c.deps.Store, id, "Trip not found")
	if err != nil {
		return status, err
	}
	remaining := c.deleteImages(ctx, trip.Images)
	if len(remaining) > 0 {
		err := c.deps.Store.Merge(ctx, types.COLLECTION_TRIPS, id, map[string]any{
			"images":    remaining,
			"updatedAt": c.deps.Now(),
		})
		if err != nil {
			log.Printf("[Trips] Error saving remaining images of trip [%s]: %s\n", id, err.Error())
		}
		return http.StatusBadGateway, ErrPartialImageDelete
	}
	if err := c.deps.Store.Delete(ctx, types.COLLECTION_TRIPS, id); err != nil {
		log.Printf("[Trips] Error deleting trip [%s]: %s\n", id, err.Error())
		return http.StatusInternalServerError, err
	}
	log.Printf("[Trips] Deleted trip [%s] and %d images\n", id, len(trip.Images))
	return http.StatusOK, nil
}
