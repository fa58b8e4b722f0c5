// internal/workers/notification/notify-shortlist/handler.go
package notifyshortlist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/common/metrics"
	"screening-workers/internal/models"
	"screening-workers/internal/scorestore"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-shortlist"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config      *Config
	db          *sql.DB
	scores      *scorestore.Store
	logger      logger.Logger
	sesClient   SESService
	snsClient   SNSService
	templateMap map[string]models.NotificationTemplate
}

func NewHandler(config *Config, db *sql.DB, scores *scorestore.Store, log logger.Logger) (*Handler, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(config.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Handler{
		config:      config,
		db:          db,
		scores:      scores,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient:   ses.NewFromConfig(awsCfg),
		snsClient:   sns.NewFromConfig(awsCfg),
		templateMap: defaultTemplates(),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInputValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RecipientID == "" {
		return nil, errors.NewInputValidationFailedError("recipientId is required")
	}
	if input.NotificationType == TypeShortlistReady && input.JobID == "" {
		return nil, errors.NewInputValidationFailedError("jobId is required for shortlist notifications")
	}

	template, exists := h.templateMap[input.NotificationType]
	if !exists {
		return nil, errors.NewInputValidationFailedError(
			fmt.Sprintf("unknown notification type: %s", input.NotificationType))
	}

	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	email, phone, err := h.getRecipientContact(ctx, input.RecipientID, input.RecipientType)
	if err != nil {
		h.logger.Warn("recipient not found", map[string]interface{}{
			"recipientId": input.RecipientID,
			"type":        input.RecipientType,
		})
		return &Output{NotificationID: notificationID, Status: StatusDisabled, SentAt: sentAt}, nil
	}

	data := map[string]interface{}{
		"recipientId":      input.RecipientID,
		"notificationType": input.NotificationType,
		"jobId":            input.JobID,
	}
	for k, v := range input.Metadata {
		data[k] = v
	}

	shortlistSize := 0
	if input.NotificationType == TypeShortlistReady {
		shortlist, err := h.loadShortlist(ctx, input)
		if err != nil {
			return nil, err
		}
		if len(shortlist) == 0 {
			h.logger.Info("shortlist empty, nothing to announce", map[string]interface{}{
				"jobId": input.JobID,
			})
			return &Output{NotificationID: notificationID, Status: StatusDisabled, SentAt: sentAt}, nil
		}
		shortlistSize = len(shortlist)
		data["count"] = shortlistSize
		data["shortlist"] = formatShortlist(shortlist)
	}

	subject := renderTemplate(template.Subject, data)
	body := renderTemplate(template.Body, data)

	emailSent := false
	smsSent := false

	if h.config.EmailEnabled && email != "" {
		if err := h.sendEmail(ctx, email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": email,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, ShortlistSize: shortlistSize, SentAt: sentAt}, nil
		}
		emailSent = true
	}

	// SMS goes out only for shortlist announcements to recruiters with a phone on file.
	if h.config.SMSEnabled && phone != "" && input.NotificationType == TypeShortlistReady {
		if err := h.sendSMS(ctx, phone, subject); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": phone,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, ShortlistSize: shortlistSize, SentAt: sentAt}, nil
		}
		smsSent = true
	}

	status := StatusDisabled
	if emailSent || smsSent {
		status = StatusSent
	}

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		ShortlistSize:  shortlistSize,
		SentAt:         sentAt,
	}, nil
}

func (h *Handler) loadShortlist(ctx context.Context, input *Input) ([]models.ScoreRecord, error) {
	minFit := input.MinFit
	if minFit <= 0 {
		minFit = h.config.MinFit
	}
	limit := input.Limit
	if limit <= 0 {
		limit = h.config.Limit
	}

	shortlist, err := h.scores.ListByJob(ctx, input.JobID, minFit, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("shortlist", err)
	}
	return shortlist, nil
}

func (h *Handler) getRecipientContact(ctx context.Context, recipientID, recipientType string) (string, string, error) {
	var email string
	var phone sql.NullString
	var query string

	switch recipientType {
	case RecipientTypeRecruiter:
		query = `SELECT email, phone FROM recruiters WHERE id = $1`
	case RecipientTypeCandidate:
		query = `SELECT email, NULL AS phone FROM candidates WHERE id = $1`
	default:
		return "", "", fmt.Errorf("invalid recipient type: %s", recipientType)
	}

	err := h.db.QueryRowContext(ctx, query, recipientID).Scan(&email, &phone)
	return email, phone.String, err
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode(err)).Inc()
	errors.NewErrorHandler(h.logger).HandleJobError(context.Background(), client, job, err)
}

func errorCode(err error) string {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "INTERNAL_ERROR"
}

func formatShortlist(records []models.ScoreRecord) string {
	var b strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. %s (fit %d)\n", i+1, rec.CandidateID, rec.TotalFit)
	}
	return b.String()
}

// Placeholder substitution for {{key}} markers. Unresolved markers are stripped
// so a missing metadata key never leaks template syntax into an email.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		switch t := v.(type) {
		case string:
			value = t
		case int:
			value = fmt.Sprintf("%d", t)
		default:
			if v != nil {
				value = fmt.Sprintf("%v", v)
			}
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}

func defaultTemplates() map[string]models.NotificationTemplate {
	return map[string]models.NotificationTemplate{
		TypeShortlistReady: {
			Subject: "Shortlist ready for {{jobTitle}}",
			Body:    "The shortlist for job {{jobId}} is ready with {{count}} candidates:\n\n{{shortlist}}",
		},
		TypeScorePublished: {
			Subject: "Your screening result is available",
			Body:    "Your application for {{jobTitle}} has been screened. Log in to view the outcome.",
		},
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
