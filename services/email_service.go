// File: /services/email_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"bragforgood-api/config"
	"bragforgood-api/models"
)

// MailSender delivers a composed message. *gomail.Dialer satisfies it.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailService struct {
	config *config.Config
	dialer MailSender
	loc    *time.Location
}

func NewEmailService(cfg *config.Config, loc *time.Location) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return newEmailService(cfg, dialer, loc)
}

func newEmailService(cfg *config.Config, dialer MailSender, loc *time.Location) *EmailService {
	if loc == nil {
		loc = time.Local
	}
	return &EmailService{config: cfg, dialer: dialer, loc: loc}
}

func (es *EmailService) newMessage(to, subject string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(es.config.FromEmail, es.config.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	return m
}

// SendWelcome greets a freshly registered user.
func (es *EmailService) SendWelcome(user models.User) error {
	m := es.newMessage(user.Email, "Welcome to bragforgood")

	textBody := fmt.Sprintf(`Hi %s!

Thanks for joining bragforgood. Share the good things you do, cheer on others,
and show up for the events your neighbours organise.

Your profile: %s/u/%s

The bragforgood team
`, user.Name, strings.TrimRight(es.config.AppBaseURL, "/"), user.Handle)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2>Hi %s!</h2>
    <p>Thanks for joining bragforgood. Share the good things you do, cheer on others,
    and show up for the events your neighbours organise.</p>
    <p><a href="%s/u/%s">Open your profile</a></p>
    <p><strong>The bragforgood team</strong></p>
</body>
</html>`, user.Name, strings.TrimRight(es.config.AppBaseURL, "/"), user.Handle)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	log.WithField("user_id", user.ID).Info("welcome email sent")
	return nil
}

// SendJoinConfirmation tells a participant where and when the event happens.
func (es *EmailService) SendJoinConfirmation(user models.User, deed models.Deed) error {
	m := es.newMessage(user.Email, "You're in: "+deed.Title)

	when := "to be announced"
	if deed.EventDate != nil {
		when = deed.EventDate.In(es.loc).Format("Monday 2 January 2006, 15:04")
	}
	where := "see the event page"
	if deed.MeetingPoint != nil && *deed.MeetingPoint != "" {
		where = *deed.MeetingPoint
	} else if deed.Location != nil && *deed.Location != "" {
		where = *deed.Location
	}
	link := fmt.Sprintf("%s/deeds/%s", strings.TrimRight(es.config.AppBaseURL, "/"), deed.ID)

	var bring string
	if deed.WhatToBring != nil && *deed.WhatToBring != "" {
		bring = "What to bring: " + *deed.WhatToBring + "\n"
	}

	textBody := fmt.Sprintf(`Hi %s!

You joined "%s".

When: %s
Where: %s
%s
Details: %s

Can't make it any more? Leave the event from the page above so someone else can take your spot.
`, user.Name, deed.Title, when, where, bring, link)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2>Hi %s!</h2>
    <p>You joined <strong>%s</strong>.</p>
    <p><strong>When:</strong> %s<br><strong>Where:</strong> %s</p>
    <p>%s</p>
    <p><a href="%s">View the event</a></p>
    <p><small>Can't make it any more? Leave the event so someone else can take your spot.</small></p>
</body>
</html>`, user.Name, deed.Title, when, where, strings.TrimSpace(bring), link)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send join confirmation: %w", err)
	}
	log.WithFields(log.Fields{"user_id": user.ID, "deed_id": deed.ID}).Info("join confirmation sent")
	return nil
}
