package notifier

import (
	"context"
	"strings"

	"github.com/zoria/nautiljon-planner/internal/release"
)

// Notifier defines the interface for posting release notifications
type Notifier interface {
	// Post sends a single payload
	Post(ctx context.Context, p *Payload) error
}

// placeholder is shown for empty field values
const placeholder = "-"

// Field is a labelled value rendered next to the notification title.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Payload is the transport-neutral notification for one release.
type Payload struct {
	Title    string
	URL      *string
	ImageURL *string
	Fields   []Field
}

// BuildPayload creates the notification for a record.
func BuildPayload(rec *release.Record) *Payload {
	return &Payload{
		Title:    "New release: " + rec.Title,
		URL:      rec.PurchaseURL,
		ImageURL: rec.ThumbnailURL,
		Fields: []Field{
			{Name: "Release date", Value: orPlaceholder(rec.HumanDate()), Inline: true},
			{Name: "Price", Value: orPlaceholder(rec.Price), Inline: true},
			{Name: "Publisher", Value: orPlaceholder(release.Deref(rec.Publisher)), Inline: true},
		},
	}
}

// Text renders the payload as plain text, one field per line.
func (p *Payload) Text() string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString("\n")
	for _, f := range p.Fields {
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
	if p.URL != nil {
		b.WriteString(*p.URL)
		b.WriteString("\n")
	}
	return b.String()
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
