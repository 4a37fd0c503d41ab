// Package support holds the submission entity pipeline's input validation.
package support

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"support-desk/internal/models"
)

// Validation error codes.
const (
	CodeRequired      = "required"
	CodeInvalidFormat = "invalid_format"
	CodeTooLarge      = "too_large"
)

// MaxAttachmentMB is the upload limit set by the Help Scout Mailbox API.
const MaxAttachmentMB = 10

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// FieldError describes a single validation failure on a named form field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Upload describes a file received with the form. TempPath points at the
// request layer's temporary copy; the bytes are only read at forward time.
type Upload struct {
	FileName string
	MimeType string
	Size     int64
	TempPath string
}

// RawForm is the untrusted field mapping received from the HTTP layer plus
// the optional upload. Unrecognized keys are ignored during extraction.
type RawForm struct {
	Fields     map[string]string
	Attachment *Upload
}

// Validate extracts the recognized fields from the raw form and checks them.
// All applicable errors are collected; the submission is only usable when the
// returned error list is empty. The store URL is normalized in place (https
// scheme prepended when missing) before being checked.
func Validate(form *RawForm) (*models.Submission, []FieldError) {
	sub := &models.Submission{
		Browser:  map[string]string{},
		Location: map[string]string{},
	}

	get := func(key string) string { return form.Fields[key] }

	sub.FirstName = strings.TrimSpace(get("firstName"))
	sub.LastName = strings.TrimSpace(get("lastName"))
	sub.Email = strings.TrimSpace(get("email"))
	sub.StoreURL = strings.TrimSpace(get("storeUrl"))
	sub.StorePassword = strings.TrimSpace(get("storePassword"))
	sub.Theme = strings.TrimSpace(get("theme"))
	sub.Subject = strings.TrimSpace(get("subject"))
	sub.Message = get("message")

	var errs []FieldError

	// Email
	if sub.Email == "" {
		errs = append(errs, FieldError{
			Field:   "email",
			Code:    CodeRequired,
			Message: "Email address required.",
		})
	} else if !emailRegex.MatchString(sub.Email) {
		errs = append(errs, FieldError{
			Field:   "email",
			Code:    CodeInvalidFormat,
			Message: "Invalid email address.",
		})
	}

	// Subject
	if sub.Subject == "" {
		errs = append(errs, FieldError{
			Field:   "subject",
			Code:    CodeRequired,
			Message: "Subject required.",
		})
	}

	// Message
	if sub.Message == "" {
		errs = append(errs, FieldError{
			Field:   "message",
			Code:    CodeRequired,
			Message: "Message required.",
		})
	}

	// Store URL: default the scheme, then check syntax
	if sub.StoreURL != "" {
		if !strings.HasPrefix(sub.StoreURL, "http") {
			sub.StoreURL = "https://" + sub.StoreURL
		}
		if !isValidURL(sub.StoreURL) {
			errs = append(errs, FieldError{
				Field:   "storeUrl",
				Code:    CodeInvalidFormat,
				Message: "Invalid URL",
			})
		}
	}

	// File attachment
	if form.Attachment != nil && form.Attachment.Size > 0 {
		sub.Attachment = &models.Attachment{
			FileName: form.Attachment.FileName,
			MimeType: form.Attachment.MimeType,
			Data:     models.AttachmentPlaceholder,
		}
		sub.AttachmentPath = form.Attachment.TempPath

		// Size limit computed the way the Mailbox API documents it
		sizeMB := float64(form.Attachment.Size) / 1024 / 1000
		if sizeMB > MaxAttachmentMB {
			errs = append(errs, FieldError{
				Field:   "attachment",
				Code:    CodeTooLarge,
				Message: fmt.Sprintf("File size is too large. Upload limit %dMB.", MaxAttachmentMB),
			})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return sub, nil
}

// HTMLMessage renders the collected errors as the <ul> fragment the form
// front end displays.
func HTMLMessage(errs []FieldError) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, e := range errs {
		b.WriteString("<li>")
		b.WriteString(e.Message)
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// Fields returns the names of the fields that failed, for front-end
// highlighting.
func Fields(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}
	return strings.Contains(host, ".") || host == "localhost"
}
