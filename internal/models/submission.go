package models

import (
	"encoding/json"
	"time"
)

// Attachment is the persisted description of an uploaded file. Data holds a
// placeholder base64 value in the store; the real bytes are only read from the
// temporary upload location and encoded at forward time.
type Attachment struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// AttachmentPlaceholder is stored instead of the real base64 payload.
// Throwing a large base64 value at the database isn't a great idea.
const AttachmentPlaceholder = "ZmlsZQ=="

// Submission is a single support-form entry with user content plus derived
// metadata. Browser and location maps are populated once at creation time and
// are never user-editable; the only later mutation is ForwardError, attached
// by the forwarder after a failed Help Scout delivery.
type Submission struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	StoreURL      string `json:"storeUrl"`
	StorePassword string `json:"storePassword"`
	Theme         string `json:"theme"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`

	Attachment     *Attachment `json:"file,omitempty"`
	AttachmentPath string      `json:"filePath,omitempty"` // temp upload path, processing-only

	Browser  map[string]string `json:"browser"`
	Location map[string]string `json:"location"`

	ForwardError json.RawMessage `json:"helpScoutResponse,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// HasAttachment reports whether an upload accompanied the submission.
func (s *Submission) HasAttachment() bool {
	return s.Attachment != nil
}

// HasStoreInformation reports whether any of the store-specific custom field
// values were supplied.
func (s *Submission) HasStoreInformation() bool {
	return s.Theme != "" || s.StoreURL != "" || s.StorePassword != ""
}
