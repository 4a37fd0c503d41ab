package helpscout

// Customer identifies the person a conversation belongs to.
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// ThreadAttachment is a file embedded in a thread, base64 encoded.
type ThreadAttachment struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Thread is a single entry in a conversation. Type is "note" for internal
// annotations and "customer" for the customer's own message.
type Thread struct {
	Type        string             `json:"type"`
	Customer    *Customer          `json:"customer,omitempty"`
	Text        string             `json:"text"`
	Attachments []ThreadAttachment `json:"attachments,omitempty"`
}

// CustomField carries a mailbox-defined field value by numeric id.
type CustomField struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
}

// Conversation is the payload for POST /v2/conversations.
type Conversation struct {
	Subject   string        `json:"subject"`
	Customer  Customer      `json:"customer"`
	MailboxID int64         `json:"mailboxId"`
	Type      string        `json:"type"`
	Status    string        `json:"status"`
	Threads   []Thread      `json:"threads"`
	Fields    []CustomField `json:"fields,omitempty"`
}
