package forwarder

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"support-desk/internal/models"
)

// Metadata keys rendered into the note, in display order.
var (
	browserKeys  = []string{"operatingSystem", "browserVersion", "device"}
	locationKeys = []string{"ipAddress", "location", "timeZone"}
)

// noteHTML renders the internal note thread: an optional store-information
// table followed by the customer-information table with browser and location
// metadata and a permalink back to the stored submission.
func noteHTML(sub *models.Submission, permalink string) string {
	var b strings.Builder

	if sub.HasStoreInformation() {
		b.WriteString(`<h3 style="padding:0 0 5px 5px;">Store Information</h3>`)
		b.WriteString(`<table cellpadding="5" cellspacing="2" style="margin-bottom: 16px"><tbody>`)
		writeRow(&b, "theme", sub.Theme)
		writeRow(&b, "storeURL", sub.StoreURL)
		writeRow(&b, "storePassword", sub.StorePassword)
		b.WriteString(`</tbody></table>`)
	}

	b.WriteString(`<h3 style="padding:0 0 5px 5px;">Customer Information</h3>`)
	b.WriteString(`<table cellpadding="5" cellspacing="2" style="margin-bottom: 16px"><tbody>`)
	for _, key := range browserKeys {
		writeRow(&b, key, sub.Browser[key])
	}
	for _, key := range locationKeys {
		writeRow(&b, key, sub.Location[key])
	}
	fmt.Fprintf(&b,
		`<tr><td valign="top" width="140">Submission ID</td><td valign="top"><a href="%s">%s</a></td></tr>`,
		html.EscapeString(permalink), html.EscapeString(sub.ID),
	)
	b.WriteString(`</tbody></table>`)

	return b.String()
}

func writeRow(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b,
		`<tr><td valign="top" width="140">%s</td><td valign="top">%s</td></tr>`,
		html.EscapeString(startCase(key)), html.EscapeString(value),
	)
}

// startCase converts a camelCase key into spaced words with each word
// capitalized, e.g. "operatingSystem" to "Operating System" and "storeURL"
// to "Store URL".
func startCase(s string) string {
	var words []string
	var current []rune

	runes := []rune(s)
	for i, r := range runes {
		if len(current) > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				words = append(words, string(current))
				current = current[:0]
			}
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}

	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
