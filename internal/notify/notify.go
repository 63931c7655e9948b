package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/yiqiao-yin/aws-textract-tutorial-2025/internal/detect"
)

// maxPreviewLines bounds the text preview in a notification.
const maxPreviewLines = 10

type SNSClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Event struct {
	RequestID  string
	SourceKind string
	SourceRef  string
	Pages      int32
	Cached     bool
	Summary    detect.Summary
	At         time.Time
}

type Notifier struct {
	sns      SNSClient
	topicArn string
}

func NewNotifier(c SNSClient, topicArn string) *Notifier {
	return &Notifier{sns: c, topicArn: topicArn}
}

func (n *Notifier) Publish(ctx context.Context, ev Event) error {
	subject, body := BuildMessage(ev)
	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

func BuildMessage(ev Event) (subject string, body string) {
	s := ev.Summary
	subject = fmt.Sprintf("Textract: %d lines from %s", len(s.Lines), ev.SourceKind)

	lines := []string{
		"Textract document text detection",
		"",
		fmt.Sprintf("Source: %s", ev.SourceRef),
	}
	if ev.RequestID != "" {
		lines = append(lines, fmt.Sprintf("RequestId: %s", ev.RequestID))
	}
	if ev.Pages > 0 {
		lines = append(lines, fmt.Sprintf("Pages: %d", ev.Pages))
	}
	if ev.Cached {
		lines = append(lines, "Cached: true")
	}
	lines = append(lines, fmt.Sprintf("Blocks: %d", s.Blocks))

	types := make([]string, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		lines = append(lines, fmt.Sprintf("  %s: %d", t, s.ByType[t]))
	}
	if len(s.Lines) > 0 {
		lines = append(lines, fmt.Sprintf("MeanLineConfidence: %.2f", s.MeanConfidence))
		lines = append(lines, "", "Text:")
		for i, l := range s.Lines {
			if i == maxPreviewLines {
				lines = append(lines, fmt.Sprintf("  ... %d more", len(s.Lines)-maxPreviewLines))
				break
			}
			lines = append(lines, "  "+l)
		}
	}
	lines = append(lines, "", fmt.Sprintf("DetectedAt: %s", ev.At.UTC().Format(time.RFC3339)))

	return subject, strings.Join(lines, "\n")
}
