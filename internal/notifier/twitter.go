package notifier

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
)

const maxTweetLength = 280

// TwitterCredentials holds the OAuth1 user-context keys.
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Complete reports whether every key is set.
func (c TwitterCredentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// TwitterNotifier posts payloads as tweets
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a Twitter notifier from OAuth1 credentials.
func NewTwitterNotifier(creds TwitterCredentials) (*TwitterNotifier, error) {
	return newTwitterNotifier(oauth1.NoContext, creds)
}

// newTwitterNotifier builds the OAuth1 client; ctx may carry an
// oauth1.HTTPClient to override the underlying transport.
func newTwitterNotifier(ctx context.Context, creds TwitterCredentials) (*TwitterNotifier, error) {
	if !creds.Complete() {
		return nil, fmt.Errorf("missing required Twitter credentials")
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(ctx, token)

	return &TwitterNotifier{client: twitter.NewClient(httpClient)}, nil
}

// Post tweets the payload
func (n *TwitterNotifier) Post(ctx context.Context, p *Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, _, err := n.client.Statuses.Update(formatTweet(p), nil)
	if err != nil {
		return fmt.Errorf("failed to post tweet for %q: %w", p.Title, err)
	}
	return nil
}

// formatTweet formats a payload as a tweet of at most 280 characters
func formatTweet(p *Payload) string {
	var b strings.Builder
	b.WriteString("📚 ")
	b.WriteString(p.Title)
	b.WriteString("\n\n")

	for _, f := range p.Fields {
		if f.Value == placeholder {
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", f.Name, f.Value))
	}

	if p.URL != nil {
		b.WriteString("\n🔗 ")
		b.WriteString(*p.URL)
		b.WriteString("\n")
	}
	b.WriteString("\n#manga #Nautiljon")

	tweet := b.String()
	if utf8.RuneCountInString(tweet) > maxTweetLength {
		runes := []rune(tweet)
		tweet = string(runes[:maxTweetLength-3]) + "..."
	}
	return tweet
}
