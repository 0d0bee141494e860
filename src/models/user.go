package models

import "time"

type UserProfile struct {
	ID                string    `firestore:"-" json:"uid"`
	Phone             string    `firestore:"phone" json:"phone"`
	Address           string    `firestore:"address" json:"address"`
	DOB               string    `firestore:"dob" json:"dob"`
	AadharNo          string    `firestore:"aadharNo" json:"aadharNo"`
	PanNo             string    `firestore:"panNo" json:"panNo"`
	IsProfileComplete bool      `firestore:"isProfileComplete" json:"isProfileComplete"`
	UpdatedAt         time.Time `firestore:"updatedAt" json:"updatedAt"`
}

func (u *UserProfile) SetID(id string) {
	u.ID = id
}

type UserMetadata struct {
	CreationTime   string `json:"creationTime"`
	LastSignInTime string `json:"lastSignInTime"`
}

// DirectoryUser is an account as listed from the identity provider.
type DirectoryUser struct {
	UID         string       `json:"uid"`
	Email       string       `json:"email"`
	DisplayName string       `json:"displayName"`
	PhotoURL    string       `json:"photoURL"`
	Metadata    UserMetadata `json:"metadata"`
}

type UserPage struct {
	Users         []DirectoryUser `json:"users"`
	NextPageToken string          `json:"nextPageToken"`
}
