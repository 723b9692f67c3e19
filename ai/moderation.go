package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// UnavailableReason is returned to users when the moderation service cannot be reached.
const UnavailableReason = "Moderation is unavailable right now, please try again later"

type ContentKind string

const (
	KindDeed    ContentKind = "deed"
	KindComment ContentKind = "comment"
)

type Content struct {
	Kind  ContentKind
	Title string
	Body  string
}

type Verdict struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

type Moderator interface {
	Review(ctx context.Context, content Content) (Verdict, error)
}

func (c *Client) Review(ctx context.Context, content Content) (Verdict, error) {
	var v Verdict
	if err := c.generate(ctx, moderationPrompt(content), &v); err != nil {
		return Verdict{}, err
	}
	if !v.Approved && strings.TrimSpace(v.Reason) == "" {
		v.Reason = "This content does not meet our community guidelines"
	}
	return v, nil
}

func moderationPrompt(content Content) string {
	var b strings.Builder
	b.WriteString("You moderate a community site where people share good deeds they did and organize volunteer events.\n")
	b.WriteString("Decide if the following ")
	b.WriteString(string(content.Kind))
	b.WriteString(" may be published.\n\n")
	b.WriteString("Reject content that contains hate, harassment, sexual content, violence, spam, advertising, personal data of others, or that is not about doing good.\n")
	b.WriteString("Approve everything else, including short or informal posts.\n\n")
	if content.Title != "" {
		fmt.Fprintf(&b, "TITLE: %s\n", content.Title)
	}
	fmt.Fprintf(&b, "TEXT: %s\n\n", content.Body)
	b.WriteString(`Answer strictly as JSON: {"approved": true|false, "reason": "one short sentence for the author"}`)
	return b.String()
}

// failClosed turns every moderation failure into a rejection.
type failClosed struct {
	next Moderator
}

// FailClosed wraps m so that transport, parse and configuration errors
// reject the content instead of letting it through.
func FailClosed(m Moderator) Moderator {
	return failClosed{next: m}
}

func (f failClosed) Review(ctx context.Context, content Content) (Verdict, error) {
	v, err := f.next.Review(ctx, content)
	if err != nil {
		entry := log.WithError(err).WithField("kind", content.Kind)
		if errors.Is(err, ErrNotConfigured) {
			entry.Warn("moderation is not configured, rejecting content")
		} else {
			entry.Error("moderation call failed, rejecting content")
		}
		return Verdict{Approved: false, Reason: UnavailableReason}, nil
	}
	return v, nil
}
