package aws

import (
	"context"
	"ddtours/src/types"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSQueue produces to and consumes from a single named queue.
type SQSQueue struct {
	Name   string
	client sqsAPI
	mu     sync.Mutex
	url    *string
}

func NewSQSQueue(client *sqs.Client, queue string) *SQSQueue {
	return &SQSQueue{Name: queue, client: client}
}

// queueURL resolves the queue URL once. Mail workers and the listener share it.
func (q *SQSQueue) queueURL(ctx context.Context) (*string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.url != nil {
		return q.url, nil
	}
	out, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(q.Name),
	})
	if err != nil {
		log.Printf("Failed to retrieve queue URL for %s: %s\n", q.Name, err.Error())
		return nil, err
	}
	q.url = out.QueueUrl
	return q.url, nil
}

func (q *SQSQueue) Send(ctx context.Context, body string) error {
	qurl, err := q.queueURL(ctx)
	if err != nil {
		return err
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    qurl,
		MessageBody: aws.String(body),
	})
	return err
}

// Listen long-polls the queue until ctx is cancelled. Each message is handed
// to handler and deleted afterwards.
func (q *SQSQueue) Listen(ctx context.Context, handler types.Handler) {
	qurl, err := q.queueURL(ctx)
	if err != nil {
		return
	}
	log.Printf("%s: Listening for messages...", q.Name)
	for {
		if ctx.Err() != nil {
			return
		}
		output, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            qurl,
			WaitTimeSeconds:     20,
			MaxNumberOfMessages: 10,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[SQS] Error receiving messages: %s\n", err.Error())
			time.Sleep(5 * time.Second)
			continue
		}
		for _, m := range output.Messages {
			handler(strings.Clone(aws.ToString(m.Body)))
			q.deleteMessage(ctx, qurl, m)
		}
	}
}

func (q *SQSQueue) deleteMessage(ctx context.Context, qurl *string, msg sqstypes.Message) {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      qurl,
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		log.Printf("Error deleting message from queue: %s\n", err.Error())
		return
	}
	log.Printf("Deleted message from queue: %s\n", aws.ToString(msg.MessageId))
}
