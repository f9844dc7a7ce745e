package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-notify-dispatch/internal/config"
	"github.com/go-notify-dispatch/internal/domain"
)

// Sender publishes push and SMS deliveries to an SNS topic. Downstream
// platform endpoints subscribe to the topic and filter on the message
// attributes.
type Sender struct {
	client   *sns.Client
	topicARN string
}

func NewSender(cfg *config.Config) (*Sender, error) {
	if cfg.SNSTopicARN == "" {
		return nil, fmt.Errorf("SNS_TOPIC_ARN is not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &Sender{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSTopicARN}, nil
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	CTA   string `json:"cta,omitempty"`
}

// Send publishes the message content tagged with the recipient and channel.
func (s *Sender) Send(ctx context.Context, msg *domain.RankedMessage) error {
	payload, err := json.Marshal(pushPayload{
		Title: msg.Event.Content.Title,
		Body:  msg.Event.Content.Body,
		CTA:   msg.Event.Content.CTA,
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}
	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"user_id": {DataType: aws.String("String"), StringValue: aws.String(msg.Event.User.ID)},
			"channel": {DataType: aws.String("String"), StringValue: aws.String(msg.Channel)},
		},
	})
	return err
}
