package models

import "time"

type Blog struct {
	ID          string    `firestore:"-" json:"id"`
	Title       string    `firestore:"title" json:"title"`
	Slug        string    `firestore:"slug" json:"slug"`
	Excerpt     string    `firestore:"excerpt" json:"excerpt"`
	Content     string    `firestore:"content" json:"content"`
	Image       string    `firestore:"image" json:"image"`
	Category    string    `firestore:"category" json:"category"`
	ReadTime    string    `firestore:"readTime" json:"readTime"`
	Author      string    `firestore:"author" json:"author"`
	YoutubeURL  string    `firestore:"youtubeUrl" json:"youtubeUrl"`
	FacebookURL string    `firestore:"facebookUrl" json:"facebookUrl"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
}

func (b *Blog) SetID(id string) {
	b.ID = id
}
