package s3infra

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-notify-dispatch/internal/domain"
	"github.com/go-notify-dispatch/internal/pkg/id"
	"github.com/go-notify-dispatch/internal/pkg/validate"
	"github.com/go-notify-dispatch/internal/scoring"
)

// Enqueuer hands a ranked message to the dispatch queue.
type Enqueuer interface {
	Publish(ctx context.Context, msg *domain.RankedMessage) error
}

// Loader ingests batch event drops: JSON-lines objects of NotificationEvents.
// Each valid event is scored and enqueued for dispatch; invalid lines are
// logged and skipped so one bad row cannot poison a batch.
type Loader struct {
	client   *s3.Client
	bucket   string
	ranker   scoring.Service
	enqueuer Enqueuer
}

func NewLoader(client *s3.Client, bucket string, ranker scoring.Service, enqueuer Enqueuer) *Loader {
	return &Loader{client: client, bucket: bucket, ranker: ranker, enqueuer: enqueuer}
}

// IngestBatch processes one object and returns the number of enqueued
// messages.
func (l *Loader) IngestBatch(ctx context.Context, key string) (int, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("get batch %s: %w", key, err)
	}
	defer out.Body.Close()

	enqueued := 0
	sc := bufio.NewScanner(out.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev domain.NotificationEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			slog.Warn("skipping unparsable batch line", "key", key, "line", line, "err", err)
			continue
		}
		if ev.EventID == "" {
			ev.EventID = id.New()
		}
		if err := validate.Struct(&ev); err != nil {
			slog.Warn("skipping invalid event", "key", key, "line", line, "err", err)
			continue
		}
		msg := l.ranker.Rank(ctx, &ev)
		if err := l.enqueuer.Publish(ctx, msg); err != nil {
			return enqueued, fmt.Errorf("line %d: %w", line, err)
		}
		enqueued++
	}
	if err := sc.Err(); err != nil {
		return enqueued, fmt.Errorf("read batch %s: %w", key, err)
	}
	return enqueued, nil
}
