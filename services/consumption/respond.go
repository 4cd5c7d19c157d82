package consumption

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Result is one responder's outcome. Failures are captured here
// instead of propagating, so one broken responder does not stop the
// others from running.
type Result struct {
	Success bool
	Message string
}

// Responder consumes the canonical record at the edge of the pipeline.
type Responder interface {
	Name() string
	Respond(ctx context.Context, attr Attributes) Result
}

// StoreResponder mirrors the record into the record store via the
// upsert logic.
type StoreResponder struct {
	Store RecordStore
}

func (r StoreResponder) Name() string { return "store" }

func (r StoreResponder) Respond(ctx context.Context, attr Attributes) Result {
	collectionID, err := r.Store.ResolveCollection(ctx, string(attr.Database))
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	err = NewSyncer(r.Store).Upsert(ctx, collectionID, attr)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	return Result{Success: true}
}

// StatusPoster posts one status to a social feed.
type StatusPoster interface {
	PostStatus(ctx context.Context, status string) error
}

// FeedResponder announces the record on a social feed. Markdown
// controls whether the title is hyperlinked (instances that accept
// markdown render it, plain mastodon does not).
type FeedResponder struct {
	Poster   StatusPoster
	Markdown bool
}

func (r FeedResponder) Name() string { return "feed" }

func (r FeedResponder) Respond(ctx context.Context, attr Attributes) Result {
	err := r.Poster.PostStatus(ctx, FormatStatus(attr, r.Markdown))
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	return Result{Success: true}
}

// FormatStatus renders the feed status text: score glyphs, a verb
// phrase keyed to the variant, the bracketed title, the review, and
// the bare origin url last for traceability.
func FormatStatus(attr Attributes, markdown bool) string {
	var formatted string
	if attr.Score != "" && attr.Score != "N/A" {
		formatted += attr.Score
	}

	title := attr.Name
	if markdown {
		title = fmt.Sprintf("[%s](%s)", attr.Name, attr.Origin)
	}
	switch {
	case attr.Book != nil:
		formatted += fmt.Sprintf("%s《%s》", attr.Book.Status, title)
	case attr.Media != nil:
		formatted += fmt.Sprintf("看过%s《%s》", attr.Media.Type, title)
	}

	if attr.Review != "" {
		formatted += ": " + attr.Review
	}
	formatted += " " + attr.Origin
	return formatted
}

// EmailConfig configures the optional email digest responder.
type EmailConfig struct {
	Server   string `json:"server"`
	Port     int    `json:"port"`
	Address  string `json:"address"`
	Password string `json:"password"`
	To       string `json:"to"`
}

// EmailResponder mails a short digest of the recorded event. It exists
// for setups without a feed account; most deployments leave it
// unconfigured.
type EmailResponder struct {
	Config EmailConfig
}

func (r EmailResponder) Name() string { return "email" }

func (r EmailResponder) Respond(ctx context.Context, attr Attributes) Result {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("consumelog <%s>", r.Config.Address)
	mail.To = []string{r.Config.To}
	mail.Subject = fmt.Sprintf("Recorded: %s", attr.Name)
	mail.Text = []byte(FormatStatus(attr, false))

	err := mail.Send(
		fmt.Sprintf("%s:%d", r.Config.Server, r.Config.Port),
		smtp.PlainAuth("", r.Config.Address, r.Config.Password, r.Config.Server),
	)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	return Result{Success: true}
}
