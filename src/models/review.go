package models

import "time"

type Review struct {
	ID        string    `firestore:"-" json:"id"`
	TripID    string    `firestore:"tripId" json:"tripId"`
	TripTitle string    `firestore:"tripTitle" json:"tripTitle"`
	TripImage string    `firestore:"tripImage" json:"tripImage"`
	UserID    string    `firestore:"userId" json:"userId"`
	UserName  string    `firestore:"userName" json:"userName"`
	UserPhoto string    `firestore:"userPhoto" json:"userPhoto"`
	Rating    int       `firestore:"rating" json:"rating"`
	Comment   string    `firestore:"comment" json:"comment"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
}

func (r *Review) SetID(id string) {
	r.ID = id
}

type RatingAggregate struct {
	AverageRating float64 `json:"newAverage"`
	TotalRatings  int     `json:"totalRatings"`
}
