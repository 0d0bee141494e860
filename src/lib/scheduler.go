package lib

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

var scheduler gocron.Scheduler

func GetScheduler() (gocron.Scheduler, error) {
	if scheduler != nil {
		return scheduler, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("Error initializing Scheduler: %s\n", err.Error())
		return nil, err
	}
	scheduler = sched
	return sched, nil
}

// CreateCronJob runs handler every interval. A run that is still going when
// the next one is due makes the next one wait.
func CreateCronJob(name string, interval time.Duration, handler any, args ...any) (*string, error) {
	sched, err := GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return nil, err
	}
	j, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(handler, args...),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}
	id := j.ID().String()
	log.Printf("Job: %s %s\n", id, j.Name())
	return &id, nil
}

func StopScheduler() {
	if scheduler == nil {
		return
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("An error has occurred while stopping Scheduler: %s\n", err.Error())
	}
}
