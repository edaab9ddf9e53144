// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package auth

import (
	"context"
	"log/slog"
)

// Mailer delivers verification mail to freshly registered users.
type Mailer interface {

	/*
		SendVerification delivers the verification link to the given address.

		Parameters:
		  - context: context.Context
		  - email: string
		  - link: string (Absolute verification URL)

		Returns:
		  - error: Delivery failures
	*/
	SendVerification(context context.Context, email, link string) error
}

// LogMailer is the development Mailer: it writes the verification link to the
// structured log instead of sending real mail.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a LogMailer on top of the given logger.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendVerification logs the verification link at INFO level.
func (mailer *LogMailer) SendVerification(context context.Context, email, link string) error {
	mailer.logger.InfoContext(context, "verification_mail_dispatched",
		slog.String("email", email),
		slog.String("link", link),
	)
	return nil
}
