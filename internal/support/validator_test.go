package support

import (
	"testing"

	"support-desk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formWith(fields map[string]string) *RawForm {
	return &RawForm{Fields: fields}
}

func TestValidate_AllRequiredMissing(t *testing.T) {
	sub, errs := Validate(formWith(map[string]string{}))

	assert.Nil(t, sub)
	require.Len(t, errs, 3)
	assert.Equal(t, FieldError{Field: "email", Code: CodeRequired, Message: "Email address required."}, errs[0])
	assert.Equal(t, FieldError{Field: "subject", Code: CodeRequired, Message: "Subject required."}, errs[1])
	assert.Equal(t, FieldError{Field: "message", Code: CodeRequired, Message: "Message required."}, errs[2])
}

func TestValidate_InvalidEmail(t *testing.T) {
	_, errs := Validate(formWith(map[string]string{
		"email":   "not-an-email",
		"subject": "Hi",
		"message": "Hello",
	}))

	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, CodeInvalidFormat, errs[0].Code)
	assert.Equal(t, "Invalid email address.", errs[0].Message)
}

func TestValidate_TrimsFieldsButNotMessage(t *testing.T) {
	sub, errs := Validate(formWith(map[string]string{
		"firstName": "  Jane ",
		"email":     " jane@example.com ",
		"subject":   " Broken cart ",
		"message":   "  padded message  ",
	}))

	require.Empty(t, errs)
	assert.Equal(t, "Jane", sub.FirstName)
	assert.Equal(t, "jane@example.com", sub.Email)
	assert.Equal(t, "Broken cart", sub.Subject)
	assert.Equal(t, "  padded message  ", sub.Message)
}

func TestValidate_IgnoresUnknownFields(t *testing.T) {
	sub, errs := Validate(formWith(map[string]string{
		"email":    "jane@example.com",
		"subject":  "Hi",
		"message":  "Hello",
		"injected": "nope",
		"id":       "attacker-chosen",
	}))

	require.Empty(t, errs)
	assert.Empty(t, sub.ID)
}

func TestValidate_StoreURLNormalization(t *testing.T) {
	sub, errs := Validate(formWith(map[string]string{
		"email":    "jane@example.com",
		"subject":  "Hi",
		"message":  "Hello",
		"storeUrl": "shop.example.com",
	}))

	require.Empty(t, errs)
	assert.Equal(t, "https://shop.example.com", sub.StoreURL)
}

func TestValidate_StoreURLKeepsExistingScheme(t *testing.T) {
	sub, errs := Validate(formWith(map[string]string{
		"email":    "jane@example.com",
		"subject":  "Hi",
		"message":  "Hello",
		"storeUrl": "http://shop.example.com",
	}))

	require.Empty(t, errs)
	assert.Equal(t, "http://shop.example.com", sub.StoreURL)
}

func TestValidate_InvalidStoreURL(t *testing.T) {
	_, errs := Validate(formWith(map[string]string{
		"email":    "jane@example.com",
		"subject":  "Hi",
		"message":  "Hello",
		"storeUrl": "not a url",
	}))

	require.Len(t, errs, 1)
	assert.Equal(t, FieldError{Field: "storeUrl", Code: CodeInvalidFormat, Message: "Invalid URL"}, errs[0])
}

func TestValidate_AttachmentUnderLimit(t *testing.T) {
	form := formWith(map[string]string{
		"email":   "jane@example.com",
		"subject": "Hi",
		"message": "Hello",
	})
	form.Attachment = &Upload{
		FileName: "shot.png",
		MimeType: "image/png",
		Size:     1024,
		TempPath: "/tmp/shot.png",
	}

	sub, errs := Validate(form)
	require.Empty(t, errs)
	require.NotNil(t, sub.Attachment)
	assert.Equal(t, "shot.png", sub.Attachment.FileName)
	assert.Equal(t, models.AttachmentPlaceholder, sub.Attachment.Data)
	assert.Equal(t, "/tmp/shot.png", sub.AttachmentPath)
}

func TestValidate_AttachmentTooLarge(t *testing.T) {
	form := formWith(map[string]string{
		"email":   "jane@example.com",
		"subject": "Hi",
		"message": "Hello",
	})
	// One byte over the 10MB limit as the size check computes it.
	form.Attachment = &Upload{FileName: "big.zip", Size: 10*1024*1000 + 1}

	_, errs := Validate(form)
	require.Len(t, errs, 1)
	assert.Equal(t, "attachment", errs[0].Field)
	assert.Equal(t, CodeTooLarge, errs[0].Code)
	assert.Equal(t, "File size is too large. Upload limit 10MB.", errs[0].Message)
}

func TestValidate_ZeroSizeAttachmentIgnored(t *testing.T) {
	form := formWith(map[string]string{
		"email":   "jane@example.com",
		"subject": "Hi",
		"message": "Hello",
	})
	form.Attachment = &Upload{FileName: "empty.txt", Size: 0}

	sub, errs := Validate(form)
	require.Empty(t, errs)
	assert.Nil(t, sub.Attachment)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	form := formWith(map[string]string{
		"email":    "bad",
		"storeUrl": "also bad",
	})
	form.Attachment = &Upload{FileName: "big.zip", Size: 20 * 1024 * 1000}

	_, errs := Validate(form)
	require.Len(t, errs, 5)
	assert.Equal(t, []string{"email", "subject", "message", "storeUrl", "attachment"}, Fields(errs))
}

func TestHTMLMessage(t *testing.T) {
	errs := []FieldError{
		{Field: "email", Code: CodeRequired, Message: "Email address required."},
		{Field: "subject", Code: CodeRequired, Message: "Subject required."},
	}
	assert.Equal(t, "<ul><li>Email address required.</li><li>Subject required.</li></ul>", HTMLMessage(errs))
}
