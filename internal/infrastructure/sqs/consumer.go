// Package sqs is the transport glue between the queue and the dispatch
// controller. The queue owns redelivery and dead-lettering: this code only
// translates controller outcomes into visibility changes and deletes.
package sqs

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/go-notify-dispatch/internal/config"
	"github.com/go-notify-dispatch/internal/dispatch"
	"github.com/go-notify-dispatch/internal/domain"
)

// SQS caps visibility timeouts at 12 hours.
const maxVisibility = 12 * time.Hour

// NewClient creates an SQS client. When cfg.AWSEndpointURL is set
// (LocalStack), it overrides the endpoint so all traffic goes to the local
// instance.
func NewClient(cfg *config.Config) *sqs.Client {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		panic("failed to load AWS config for SQS: " + err.Error())
	}

	clientOpts := []func(*sqs.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}

	return sqs.NewFromConfig(awsCfg, clientOpts...)
}

// Consumer pulls RankedMessage payloads and drives the dispatch controller
// with a pool of stateless workers.
type Consumer struct {
	client     *sqs.Client
	queueURL   string
	controller *dispatch.Controller
	workers    int
}

func NewConsumer(client *sqs.Client, queueURL string, controller *dispatch.Controller, workers int) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{client: client, queueURL: queueURL, controller: controller, workers: workers}
}

// Run long-polls the queue until ctx is cancelled. Each worker receives and
// handles its own batches; a worker killed mid-attempt simply lets the
// message reappear after its visibility timeout.
func (c *Consumer) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.poll(ctx)
		}()
	}
	wg.Wait()
}

func (c *Consumer) poll(ctx context.Context) {
	for {
		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			AttributeNames: []sqstypes.QueueAttributeName{
				sqstypes.QueueAttributeName("ApproximateReceiveCount"),
			},
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("sqs: receive failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		for _, m := range out.Messages {
			c.handle(ctx, m)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Consumer) handle(ctx context.Context, m sqstypes.Message) {
	var msg domain.RankedMessage
	if err := json.Unmarshal([]byte(aws.ToString(m.Body)), &msg); err != nil {
		// Leave the message alone; the redrive policy will dead-letter it.
		log.Printf("sqs: unparsable message %s: %v", aws.ToString(m.MessageId), err)
		return
	}

	outcome, err := c.controller.Dispatch(ctx, &msg, attemptCount(m))
	switch outcome.Status {
	case dispatch.StatusSent:
		c.delete(ctx, m)
	case dispatch.StatusDeferred:
		c.retryIn(ctx, m, time.Until(outcome.ResumeAt))
	case dispatch.StatusRateLimited:
		c.retryIn(ctx, m, outcome.RetryIn)
	case dispatch.StatusFailed:
		log.Printf("sqs: dispatch failed for event %s: %v", msg.Event.EventID, err)
		c.retryIn(ctx, m, outcome.RetryIn)
	}
}

// attemptCount derives a zero-based attempt counter from the queue's
// receive count (first delivery = attempt 0).
func attemptCount(m sqstypes.Message) int {
	n, err := strconv.Atoi(m.Attributes["ApproximateReceiveCount"])
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}

func (c *Consumer) delete(ctx context.Context, m sqstypes.Message) {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		// At-least-once: the duplicate redelivery is accepted.
		log.Printf("sqs: delete failed for %s: %v", aws.ToString(m.MessageId), err)
	}
}

func (c *Consumer) retryIn(ctx context.Context, m sqstypes.Message, d time.Duration) {
	if d < time.Second {
		d = time.Second
	}
	if d > maxVisibility {
		d = maxVisibility
	}
	_, err := c.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(c.queueURL),
		ReceiptHandle:     m.ReceiptHandle,
		VisibilityTimeout: int32(d / time.Second),
	})
	if err != nil {
		log.Printf("sqs: visibility change failed for %s: %v", aws.ToString(m.MessageId), err)
	}
}
