package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	commonErrors "wecelebrate-notifier/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/nyaruka/phonenumbers"
)

// SNSAPI is the subset of the SNS client used for SMS and push.
type SNSAPI interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
	CreatePlatformEndpoint(ctx context.Context, input *sns.CreatePlatformEndpointInput) (*sns.CreatePlatformEndpointOutput, error)
}

// ==========================
// SMS
// ==========================

type SMSSender struct {
	client        SNSAPI
	senderID      string
	defaultRegion string
}

// NewSMSSender parses numbers without a country prefix against defaultRegion
// (an ISO 3166 code such as "US").
func NewSMSSender(client SNSAPI, senderID, defaultRegion string) *SMSSender {
	return &SMSSender{client: client, senderID: senderID, defaultRegion: defaultRegion}
}

func (s *SMSSender) Send(ctx context.Context, msg Message) (*Result, error) {
	phone, err := NormalizePhone(msg.To, s.defaultRegion)
	if err != nil {
		return nil, commonErrors.NewValidationFailedError(err.Error())
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(msg.Text),
		MessageAttributes: attrs,
	})
	if err != nil {
		return nil, err
	}
	return &Result{MessageID: aws.ToString(out.MessageId), Provider: "SNS"}, nil
}

// NormalizePhone returns the E.164 form of number.
func NormalizePhone(number, defaultRegion string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", fmt.Errorf("missing phone number")
	}
	parsed, err := phonenumbers.Parse(number, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number: %s", number)
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// ==========================
// Push
// ==========================

// PushSender publishes to an SNS platform endpoint. A recipient that is not
// an endpoint ARN is treated as a device token and registered under the
// platform application first.
type PushSender struct {
	client         SNSAPI
	platformAppARN string
}

func NewPushSender(client SNSAPI, platformAppARN string) *PushSender {
	return &PushSender{client: client, platformAppARN: platformAppARN}
}

func (p *PushSender) Send(ctx context.Context, msg Message) (*Result, error) {
	target, err := p.resolveEndpoint(ctx, msg.To)
	if err != nil {
		return nil, err
	}

	payload, err := pushPayload(msg.Subject, msg.Text)
	if err != nil {
		return nil, err
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(target),
		Message:          aws.String(payload),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return nil, err
	}
	return &Result{MessageID: aws.ToString(out.MessageId), Provider: "SNS"}, nil
}

func (p *PushSender) resolveEndpoint(ctx context.Context, to string) (string, error) {
	if strings.HasPrefix(to, "arn:") {
		return to, nil
	}
	if p.platformAppARN == "" {
		return "", commonErrors.NewChannelNotConfiguredError("push")
	}
	out, err := p.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(p.platformAppARN),
		Token:                  aws.String(to),
	})
	if err != nil {
		return "", fmt.Errorf("register device token: %w", err)
	}
	return aws.ToString(out.EndpointArn), nil
}

// pushPayload builds the per-platform JSON document SNS expects when
// MessageStructure is "json".
func pushPayload(title, body string) (string, error) {
	gcm, err := json.Marshal(map[string]interface{}{
		"notification": map[string]string{"title": title, "body": body},
	})
	if err != nil {
		return "", err
	}
	apns, err := json.Marshal(map[string]interface{}{
		"aps": map[string]interface{}{"alert": map[string]string{"title": title, "body": body}},
	})
	if err != nil {
		return "", err
	}
	doc, err := json.Marshal(map[string]string{
		"default":      body,
		"GCM":          string(gcm),
		"APNS":         string(apns),
		"APNS_SANDBOX": string(apns),
	})
	if err != nil {
		return "", err
	}
	return string(doc), nil
}
