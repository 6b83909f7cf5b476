package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/zoria/nautiljon-planner/internal/notifier"
)

// FormatPayload formats a notification payload as a Telegram HTML message
func FormatPayload(p *notifier.Payload) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("📚 <b>%s</b>\n\n", html.EscapeString(p.Title)))

	for _, f := range p.Fields {
		msg.WriteString(fmt.Sprintf("%s %s: %s\n", fieldEmoji(f.Name), html.EscapeString(f.Name), html.EscapeString(f.Value)))
	}

	if p.URL != nil {
		msg.WriteString(fmt.Sprintf("\n🔗 <a href=\"%s\">Nautiljon</a>\n", html.EscapeString(*p.URL)))
	}

	if p.ImageURL != nil {
		msg.WriteString(fmt.Sprintf("🖼 <a href=\"%s\">Cover</a>\n", html.EscapeString(*p.ImageURL)))
	}

	return msg.String()
}

func fieldEmoji(name string) string {
	switch name {
	case "Release date":
		return "📅"
	case "Price":
		return "💶"
	case "Publisher":
		return "🏢"
	default:
		return "•"
	}
}
