package lib

import (
	"context"
	"ddtours/src/config"
	"ddtours/src/models"
	"ddtours/src/types"
	"encoding/json"
	"log"
	"net/http"
	"path"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

var innerApp *firebase.App
var innerAuth *auth.Client
var innerFirestore *firestore.Client

// getOpts prefers service account fields from the environment and falls back
// to the credentials file mounted in the secrets directory.
func getOpts(cfg *config.Config) option.ClientOption {
	if cfg.FirebaseClientEmail != "" && cfg.FirebasePrivateKey != "" {
		creds, _ := json.Marshal(map[string]string{
			"type":           "service_account",
			"project_id":     cfg.FirebaseProjectID,
			"private_key_id": cfg.FirebasePrivateKeyID,
			"private_key":    cfg.FirebasePrivateKey,
			"client_email":   cfg.FirebaseClientEmail,
			"token_uri":      "https://oauth2.googleapis.com/token",
		})
		return option.WithCredentialsJSON(creds)
	}
	return option.WithCredentialsFile(path.Join(cfg.SecretsDir, "admin-sdk-credentials.json"))
}

func GetFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if innerApp != nil {
		return innerApp, nil
	}
	var fbConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}
	app, err := firebase.NewApp(ctx, fbConfig, getOpts(cfg))
	if err != nil {
		log.Printf("error initializing app: %s\n", err.Error())
		return nil, err
	}
	innerApp = app
	return app, nil
}

func GetFirebaseAuth(ctx context.Context, cfg *config.Config) (*auth.Client, error) {
	if innerAuth != nil {
		return innerAuth, nil
	}
	app, err := GetFirebaseApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		log.Printf("error initializing Firebase Auth: %s\n", err.Error())
		return nil, err
	}
	innerAuth = client
	return client, nil
}

func GetFirestore(ctx context.Context, cfg *config.Config) (*firestore.Client, error) {
	if innerFirestore != nil {
		return innerFirestore, nil
	}
	app, err := GetFirebaseApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		log.Printf("error initializing Firestore: %s\n", err.Error())
		return nil, err
	}
	innerFirestore = client
	return client, nil
}

// UserDirectory lists and removes accounts in the identity provider.
type UserDirectory interface {
	ListUsers(ctx context.Context, limit int, pageToken string) (*models.UserPage, error)
	DeleteUser(ctx context.Context, uid string) error
}

type FirebaseUserDirectory struct {
	client *auth.Client
}

func NewFirebaseUserDirectory(client *auth.Client) *FirebaseUserDirectory {
	return &FirebaseUserDirectory{client: client}
}

func (d *FirebaseUserDirectory) ListUsers(ctx context.Context, limit int, pageToken string) (*models.UserPage, error) {
	pager := iterator.NewPager(d.client.Users(ctx, ""), limit, pageToken)
	var records []*auth.ExportedUserRecord
	next, err := pager.NextPage(&records)
	if err != nil {
		return nil, err
	}
	page := &models.UserPage{Users: make([]models.DirectoryUser, 0, len(records)), NextPageToken: next}
	for _, r := range records {
		name := r.DisplayName
		if name == "" {
			name = "No Name"
		}
		u := models.DirectoryUser{
			UID:         r.UID,
			Email:       r.Email,
			DisplayName: name,
			PhotoURL:    r.PhotoURL,
		}
		if r.UserMetadata != nil {
			u.Metadata = models.UserMetadata{
				CreationTime:   formatMillis(r.UserMetadata.CreationTimestamp),
				LastSignInTime: formatMillis(r.UserMetadata.LastLogInTimestamp),
			}
		}
		page.Users = append(page.Users, u)
	}
	return page, nil
}

func (d *FirebaseUserDirectory) DeleteUser(ctx context.Context, uid string) error {
	err := d.client.DeleteUser(ctx, uid)
	if auth.IsUserNotFound(err) {
		return types.ErrNotFound
	}
	return err
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(http.TimeFormat)
}
