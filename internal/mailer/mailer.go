package mailer

import "embed"

const (
	FromName              = "TheatreOps"
	maxRetries            = 3
	ReviewRequestTemplate = "review_request.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
