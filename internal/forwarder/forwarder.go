// Package forwarder delivers persisted submissions to Help Scout and raises
// an internal alert conversation when delivery fails.
package forwarder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"support-desk/internal/common/config"
	stderrors "support-desk/internal/common/errors"
	"support-desk/internal/common/logger"
	"support-desk/internal/common/metrics"
	"support-desk/internal/helpscout"
	"support-desk/internal/models"
	"support-desk/internal/storage"
)

// AlertSubject is the subject line of the internal fallback conversation.
const AlertSubject = "⚠️ Internal: Support Form Submission Error"

// ConversationClient creates conversations in the ticketing system.
type ConversationClient interface {
	CreateConversation(ctx context.Context, conv *helpscout.Conversation) (string, error)
}

// Forwarder builds Help Scout conversations from submissions and delivers
// them. Failures are recorded on the stored submission and escalated with a
// bare-bones internal alert; a failing alert is only logged.
type Forwarder struct {
	client        ConversationClient
	store         storage.SubmissionStore
	cfg           config.HelpScoutConfig
	publicBaseURL string
	logger        logger.Logger
}

func New(client ConversationClient, store storage.SubmissionStore, cfg config.HelpScoutConfig, publicBaseURL string, log logger.Logger) *Forwarder {
	return &Forwarder{
		client:        client,
		store:         store,
		cfg:           cfg,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        log.WithFields(map[string]interface{}{"component": "forwarder"}),
	}
}

// Forward delivers the submission as a Help Scout conversation. On failure it
// attaches the provider's error payload to the stored submission, then sends
// the internal alert. The returned error is operational only; the submitting
// caller has already been answered.
func (f *Forwarder) Forward(ctx context.Context, sub *models.Submission) error {
	conv, err := f.buildConversation(sub)
	if err != nil {
		metrics.ForwardAttempts.WithLabelValues("failure").Inc()
		return f.fail(ctx, sub, err)
	}

	timer := prometheus.NewTimer(metrics.ForwardDuration)
	conversationID, err := f.client.CreateConversation(ctx, conv)
	timer.ObserveDuration()

	if err == nil {
		metrics.ForwardAttempts.WithLabelValues("success").Inc()
		f.logger.Info("conversation created", map[string]interface{}{
			"submissionId":   sub.ID,
			"conversationId": conversationID,
		})
		return nil
	}

	metrics.ForwardAttempts.WithLabelValues("failure").Inc()
	return f.fail(ctx, sub, err)
}

// fail runs the degraded path: record the cause on the stored submission,
// then raise the internal alert.
func (f *Forwarder) fail(ctx context.Context, sub *models.Submission, cause error) error {
	f.logger.WithError(cause).Error("conversation delivery failed", map[string]interface{}{
		"submissionId": sub.ID,
	})

	f.recordFailure(ctx, sub, cause)
	f.sendAlert(ctx, sub)

	return stderrors.NewForwardFailedError(cause)
}

func (f *Forwarder) buildConversation(sub *models.Submission) (*helpscout.Conversation, error) {
	customer := helpscout.Customer{Email: sub.Email}
	if sub.FirstName != "" {
		customer.FirstName = sub.FirstName
	}
	if sub.LastName != "" {
		customer.LastName = sub.LastName
	}

	note := helpscout.Thread{
		Type: "note",
		Text: noteHTML(sub, f.permalink(sub.ID)),
	}

	if sub.HasAttachment() && sub.AttachmentPath != "" {
		data, err := os.ReadFile(sub.AttachmentPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read uploaded file: %w", err)
		}
		note.Attachments = []helpscout.ThreadAttachment{{
			FileName: sub.Attachment.FileName,
			MimeType: sub.Attachment.MimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		}}
	}

	conv := &helpscout.Conversation{
		Subject:   sub.Subject,
		Customer:  customer,
		MailboxID: f.cfg.MailboxID,
		Type:      "email",
		Status:    "active",
		Threads: []helpscout.Thread{
			note,
			{
				Type:     "customer",
				Customer: &helpscout.Customer{Email: sub.Email},
				Text:     sub.Message,
			},
		},
	}

	if sub.Theme != "" {
		conv.Fields = append(conv.Fields, helpscout.CustomField{ID: f.cfg.CustomFields.Theme, Value: sub.Theme})
	}
	if sub.StoreURL != "" {
		conv.Fields = append(conv.Fields, helpscout.CustomField{ID: f.cfg.CustomFields.StoreURL, Value: sub.StoreURL})
	}
	if sub.StorePassword != "" {
		conv.Fields = append(conv.Fields, helpscout.CustomField{ID: f.cfg.CustomFields.StorePassword, Value: sub.StorePassword})
	}

	return conv, nil
}

// recordFailure persists the provider's error payload on the submission.
// Best effort; a store error must not block the internal alert.
func (f *Forwarder) recordFailure(ctx context.Context, sub *models.Submission, cause error) {
	payload := failurePayload(cause)
	sub.ForwardError = payload

	if err := f.store.AttachFailureRecord(ctx, sub.ID, payload); err != nil {
		f.logger.WithError(err).Error("failed to record delivery failure", map[string]interface{}{
			"submissionId": sub.ID,
		})
	}
}

// sendAlert delivers a deliberately minimal conversation to the internal
// inbox so a failed submission still surfaces to a human.
func (f *Forwarder) sendAlert(ctx context.Context, sub *models.Submission) {
	apiData, err := json.MarshalIndent(sub, "", " ")
	if err != nil {
		apiData = []byte(fmt.Sprintf("%+v", sub))
	}

	text := fmt.Sprintf(
		`<p>Yikes! It looks like there was a problem with a form submission</p>`+
			`<ul><li>Email: %s</li><li>ID: %s</li><li><a href="%s">API submission data</a></li></ul>`+
			`<h3>API Data</h3><pre>%s</pre>`,
		sub.Email, sub.ID, f.permalink(sub.ID), string(apiData),
	)

	alert := &helpscout.Conversation{
		Subject:   AlertSubject,
		Customer:  helpscout.Customer{Email: f.cfg.AlertEmail},
		MailboxID: f.cfg.MailboxID,
		Type:      "email",
		Status:    "active",
		Threads: []helpscout.Thread{
			{
				Type:     "customer",
				Customer: &helpscout.Customer{Email: f.cfg.AlertEmail},
				Text:     text,
			},
		},
	}

	if _, err := f.client.CreateConversation(ctx, alert); err != nil {
		metrics.FallbackAttempts.WithLabelValues("failure").Inc()
		// End of the line. A failing alert usually means bad credentials.
		f.logger.WithError(stderrors.NewFallbackFailedError(err)).Error("internal alert delivery failed", map[string]interface{}{
			"submissionId": sub.ID,
		})
		return
	}
	metrics.FallbackAttempts.WithLabelValues("success").Inc()
}

func (f *Forwarder) permalink(id string) string {
	return fmt.Sprintf("%s/v1/support/%s", f.publicBaseURL, id)
}

// failurePayload normalizes a delivery error into a JSON document. Provider
// error bodies are kept verbatim when they already are valid JSON.
func failurePayload(err error) json.RawMessage {
	var apiErr *helpscout.APIError
	if errors.As(err, &apiErr) && json.Valid(apiErr.Body) {
		return json.RawMessage(apiErr.Body)
	}

	payload, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return json.RawMessage(`{"error":"unknown delivery failure"}`)
	}
	return json.RawMessage(payload)
}
