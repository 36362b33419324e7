package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"sync"

	"redapi/internal/domain/models"
)

// emailJob is one queued outbound mail.
type emailJob struct {
	To      string
	Subject string
	Body    string
}

// SendFunc delivers a composed email. Overridable in tests.
type SendFunc func(to, subject, body string) error

// EmailNotifier queues booking emails onto a worker pool. Delivery failures
// are logged and absorbed; Notify never blocks the reservation engine and
// drops the job when the queue is saturated.
type EmailNotifier struct {
	FromAddress     string
	FrontendBaseURL string
	Send            SendFunc

	queue chan emailJob
	wg    sync.WaitGroup
}

// NewEmailNotifier starts the worker pool. SMTP settings may be empty, in
// which case composed mails are logged instead of sent.
func NewEmailNotifier(fromAddress, frontendBaseURL, smtpAddr, smtpUsername, smtpPassword string, workers int) *EmailNotifier {
	if workers <= 0 {
		workers = 1
	}
	n := &EmailNotifier{
		FromAddress:     fromAddress,
		FrontendBaseURL: frontendBaseURL,
		queue:           make(chan emailJob, 100),
	}
	n.Send = n.smtpSender(smtpAddr, smtpUsername, smtpPassword)

	for i := 0; i < workers; i++ {
		n.wg.Add(1)
		go n.worker(i)
	}
	return n
}

func (n *EmailNotifier) worker(id int) {
	defer n.wg.Done()
	for job := range n.queue {
		if err := n.Send(job.To, job.Subject, job.Body); err != nil {
			log.Printf("[NOTIFY] worker=%d failed to send %q to %s: %v", id, job.Subject, job.To, err)
			continue
		}
		log.Printf("[NOTIFY] worker=%d sent %q to %s", id, job.Subject, job.To)
	}
}

// Shutdown drains the queue and stops the workers.
func (n *EmailNotifier) Shutdown() {
	close(n.queue)
	n.wg.Wait()
}

// Notify composes and enqueues the email for a booking event.
func (n *EmailNotifier) Notify(kind models.NotificationKind, booking models.Booking) {
	if strings.TrimSpace(booking.Email) == "" {
		return
	}
	if strings.TrimSpace(n.FromAddress) == "" {
		log.Printf("[NOTIFY] skipping email to %s: from address not configured", booking.Email)
		return
	}

	subject, body := n.compose(kind, booking)
	if subject == "" {
		return
	}

	select {
	case n.queue <- emailJob{To: booking.Email, Subject: subject, Body: body}:
	default:
		log.Printf("[NOTIFY] queue full, dropping %q for %s", subject, booking.Email)
	}
}

func (n *EmailNotifier) compose(kind models.NotificationKind, b models.Booking) (string, string) {
	name := orDefault(b.Name, "there")
	details := fmt.Sprintf("Booking details:\n  - Teacher: %s\n  - School: %s\n  - Presentation: %s\n  - Location: %s\n  - Slot: %s\n",
		orDefault(b.Name, "N/A"),
		orDefault(b.School, "N/A"),
		orDefault(b.PresentationType, "N/A"),
		orDefault(b.Location, "To be determined"),
		orDefault(b.SlotLabel, "To be scheduled"))

	switch kind {
	case models.NotifyBookingPending:
		return "[RED] Booking request received", fmt.Sprintf(
			"Hello %s,\n\nThanks for submitting a RED presentation request. Our team will review the details and get back to you shortly.\n\n%s\nIf you need to cancel this request, you can do so at any time with the link below:\n%s\n\nWe'll follow up within 48 hours to confirm next steps.\n\n— The RED Team\n",
			name, details, n.cancellationLink(b))
	case models.NotifyBookingConfirmed:
		return "[RED] Booking confirmed", fmt.Sprintf(
			"Hello %s,\n\nGreat news — your RED presentation request has been confirmed.\n\n%s\nIf anything changes, you can still cancel using the link below:\n%s\n\nWe look forward to meeting your class!\n\n— The RED Team\n",
			name, details, n.cancellationLink(b))
	case models.NotifyBookingRejected:
		return "[RED] Booking request update", fmt.Sprintf(
			"Hello %s,\n\nThanks for your interest in a RED presentation. Unfortunately we're unable to accommodate the requested time.\n\n%s\nPlease reach out if you'd like to explore alternate times.\n\n— The RED Team\n",
			name, details)
	case models.NotifyBookingCancelled:
		return "[RED] Booking cancellation confirmed", fmt.Sprintf(
			"Hello %s,\n\nYour booking request has been cancelled. If this was a mistake, feel free to submit a new request on our website.\n\n%s\n— The RED Team\n",
			name, details)
	}
	return "", ""
}

func (n *EmailNotifier) cancellationLink(b models.Booking) string {
	base := strings.TrimRight(n.FrontendBaseURL, "/")
	return fmt.Sprintf("%s/cancel?token=%s", base, b.CancellationToken)
}

func (n *EmailNotifier) smtpSender(addr, username, password string) SendFunc {
	return func(to, subject, body string) error {
		if strings.TrimSpace(addr) == "" {
			log.Printf("[NOTIFY] smtp not configured, logging only: to=%s subject=%q", to, subject)
			return nil
		}

		msg := strings.NewReplacer("\n", "\r\n").Replace(
			fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\nMIME-Version: 1.0\nContent-Type: text/plain; charset=utf-8\n\n%s",
				n.FromAddress, to, subject, body))

		var auth smtp.Auth
		if username != "" {
			host := addr
			if i := strings.LastIndex(addr, ":"); i >= 0 {
				host = addr[:i]
			}
			auth = smtp.PlainAuth("", username, password, host)
		}
		return smtp.SendMail(addr, auth, n.FromAddress, []string{to}, []byte(msg))
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// MultiNotifier fans a booking event out to several notifiers.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(kind models.NotificationKind, booking models.Booking) {
	for _, n := range m {
		if n != nil {
			n.Notify(kind, booking)
		}
	}
}
