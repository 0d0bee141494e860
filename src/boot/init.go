package boot

import (
	"context"
	"ddtours/src/config"
	"ddtours/src/controllers"
	"ddtours/src/db"
	"ddtours/src/lib"
	awslib "ddtours/src/lib/aws"
	"ddtours/src/lib/mailer"
	"ddtours/src/middlewares"
	"ddtours/src/models"
	"ddtours/src/types"
	"errors"
	"io"
	"log"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const (
	sdkCredentialsFile = "admin-sdk-credentials.json"
	mailBuffer         = 100
)

// App holds the clients shared by every request.
type App struct {
	Config      *config.Config
	Controllers *controllers.Controllers
	UserAuth    middlewares.Verifier
	AdminAuth   middlewares.Verifier
	RateCounter lib.RateCounter
	Metrics     *lib.Metrics
	Dispatcher  *mailer.Dispatcher
}

// LoadSecrets overlays values stored in AWS Secrets Manager onto cfg.
func LoadSecrets(ctx context.Context, cfg *config.Config) {
	if cfg.AWSSecretsID == "" {
		return
	}
	raw, err := lib.AWSGetSecretString(ctx, cfg.AWSSecretsID)
	if err != nil {
		log.Printf("[boot] Using environment only, secrets unavailable: %s\n", err.Error())
		return
	}
	cfg.OverlaySecrets(raw)
}

// DownloadSDKFileFromS3 fetches the Firebase service account file into the
// secrets directory when it is missing and no inline credentials are set.
func DownloadSDKFileFromS3(ctx context.Context, cfg *config.Config) {
	if cfg.FirebaseClientEmail != "" || cfg.SecretsBucket == "" {
		return
	}
	sdkFilePath := path.Join(cfg.SecretsDir, sdkCredentialsFile)
	if _, err := os.Stat(sdkFilePath); !errors.Is(err, os.ErrNotExist) {
		return
	}
	log.Println("File not found. Downloading...")
	client := lib.AWSGetS3Client(ctx)
	if client == nil {
		return
	}
	object, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.SecretsBucket),
		Key:    aws.String(sdkCredentialsFile),
	})
	if err != nil {
		log.Printf("[S3] Error retrieving object: %s\n", err.Error())
		return
	}
	defer object.Body.Close()
	if err := os.MkdirAll(cfg.SecretsDir, 0o700); err != nil {
		log.Printf("Could not create %s: %s\n", cfg.SecretsDir, err.Error())
		return
	}
	file, err := os.OpenFile(sdkFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		log.Printf("Could not create file %s: %s\n", sdkCredentialsFile, err.Error())
		return
	}
	defer file.Close()
	if _, err := io.Copy(file, object.Body); err != nil {
		log.Printf("Error writing to file: %s\n", err.Error())
		return
	}
	log.Println("File has been written")
}

func hasFirebaseCredentials(cfg *config.Config) bool {
	if cfg.FirebaseClientEmail != "" && cfg.FirebasePrivateKey != "" {
		return true
	}
	_, err := os.Stat(path.Join(cfg.SecretsDir, sdkCredentialsFile))
	return err == nil
}

// identityUnavailable rejects every user token. Local runs without Firebase
// credentials use it so that only admin routes work.
type identityUnavailable struct{}

func (identityUnavailable) Verify(context.Context, string) (*types.Actor, error) {
	return nil, types.ErrUnauthenticated
}

func (identityUnavailable) ListUsers(context.Context, int, string) (*models.UserPage, error) {
	return &models.UserPage{Users: []models.DirectoryUser{}}, nil
}

func (identityUnavailable) DeleteUser(context.Context, string) error {
	return types.ErrNotFound
}

func initIdentity(ctx context.Context, cfg *config.Config) (db.Store, middlewares.Verifier, lib.UserDirectory, error) {
	if !hasFirebaseCredentials(cfg) {
		if !cfg.IsLocal() {
			return nil, nil, nil, errors.New("firebase credentials are not configured")
		}
		log.Println("[boot] No Firebase credentials. Using in-memory store and admin-only auth")
		return db.NewMemoryStore(), identityUnavailable{}, identityUnavailable{}, nil
	}
	fs, err := lib.GetFirestore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	fauth, err := lib.GetFirebaseAuth(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return db.NewFirestoreStore(fs), middlewares.NewFirebaseVerifier(fauth), lib.NewFirebaseUserDirectory(fauth), nil
}

func initGateway(cfg *config.Config) lib.PaymentGateway {
	if cfg.PaymentGateway == config.GATEWAY_STRIPE {
		return lib.NewStripeGateway(lib.GetStripeClient(cfg.StripeSecretKey))
	}
	return lib.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
}

func newImageStore(client *s3.Client, cfg *config.Config) (awslib.ImageStore, error) {
	if client == nil {
		return nil, errors.New("S3 client is not available")
	}
	return awslib.NewS3ImageStore(client, cfg.AssetsBucket, cfg.AssetsBaseURL), nil
}

func newMailTransport(client *ses.Client, cfg *config.Config) (mailer.Transport, error) {
	if cfg.MailTransport != config.TRANSPORT_SES {
		return mailer.NewSMTPTransport(cfg), nil
	}
	if client == nil {
		return nil, errors.New("SES client is not available")
	}
	return mailer.NewSESTransport(awslib.NewSESSender(client)), nil
}

// newMailQueue returns a nil queue when EMAIL_QUEUE is unset and mail is
// sent in process.
func newMailQueue(client *sqs.Client, cfg *config.Config) (mailer.Queue, error) {
	if cfg.EmailQueue == "" {
		return nil, nil
	}
	if client == nil {
		return nil, errors.New("SQS client is not available")
	}
	return awslib.NewSQSQueue(client, cfg.EmailQueue), nil
}

func initMailer(ctx context.Context, cfg *config.Config) (*mailer.Dispatcher, error) {
	var sesClient *ses.Client
	if cfg.MailTransport == config.TRANSPORT_SES {
		sesClient = lib.AWSGetSESClient(ctx)
	}
	transport, err := newMailTransport(sesClient, cfg)
	if err != nil {
		return nil, err
	}
	var sqsClient *sqs.Client
	if cfg.EmailQueue != "" {
		sqsClient = lib.AWSGetSQSClient(ctx)
	}
	queue, err := newMailQueue(sqsClient, cfg)
	if err != nil {
		return nil, err
	}
	d := mailer.NewDispatcher(transport, queue, cfg.MailWorkers, mailBuffer)
	d.Start(ctx)
	return d, nil
}

// InitApp builds every client from cfg. ctx bounds the background workers.
func InitApp(ctx context.Context, cfg *config.Config) (*App, error) {
	store, userAuth, users, err := initIdentity(ctx, cfg)
	if err != nil {
		return nil, err
	}
	images, err := newImageStore(lib.AWSGetS3Client(ctx), cfg)
	if err != nil {
		return nil, err
	}
	metrics := lib.GetMetrics()
	dispatcher, err := initMailer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var counter lib.RateCounter
	if cfg.RedisHost != "" {
		if rdb := lib.GetRedisClient(cfg.RedisHost); rdb != nil {
			counter = lib.NewRedisRateCounter(rdb)
		}
	}

	c := controllers.New(controllers.Deps{
		Config:   cfg,
		Store:    store,
		Images:   images,
		Gateway:  initGateway(cfg),
		Notifier: mailer.NewNotifier(dispatcher, cfg.MailFrom, cfg.MailFromName, cfg.ProfileURL),
		Users:    users,
		Metrics:  metrics,
	})
	return &App{
		Config:      cfg,
		Controllers: c,
		UserAuth:    userAuth,
		AdminAuth:   middlewares.NewAdminTokenVerifier(cfg.JWTSecret),
		RateCounter: counter,
		Metrics:     metrics,
		Dispatcher:  dispatcher,
	}, nil
}

// InitScheduler registers the rating reconciliation job and starts the
// scheduler.
func InitScheduler(app *App) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if app.Config.ReconcileInterval > 0 {
		if _, err := lib.CreateCronJob("reconcile-ratings", app.Config.ReconcileInterval, app.Controllers.Reviews.Reconcile); err != nil {
			log.Printf("Error scheduling rating reconciliation: %s\n", err.Error())
		}
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func Shutdown(app *App) {
	lib.StopScheduler()
	if app.Dispatcher != nil {
		app.Dispatcher.Stop()
	}
}
