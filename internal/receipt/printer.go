package receipt

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"github.com/talkincode/toughpos/internal/domain"
)

// Job is one rendered receipt ready for delivery
type Job struct {
	Sale domain.Sale
	Text string
}

// Printer is a receipt sink
type Printer interface {
	Print(ctx context.Context, job Job) error
}

// FilePrinter spools receipts as text files, one per sale, for a spooler
// or a printer share to pick up
type FilePrinter struct {
	Dir string
}

func (p FilePrinter) Path(saleID string) string {
	return filepath.Join(p.Dir, "receipt-"+saleID+".txt")
}

func (p FilePrinter) Print(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return errors.Wrap(err, "create receipt dir")
	}
	return errors.Wrap(os.WriteFile(p.Path(job.Sale.ID), []byte(job.Text), 0644), "write receipt")
}

// MailPrinter sends receipts as plain text e-mail
type MailPrinter struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	// Dialer is optional, a gomail SMTP dialer is built from the fields above
	Dialer gomail.Sender
}

func (p MailPrinter) message(job Job) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", p.From)
	m.SetHeader("To", p.To)
	m.SetHeader("Subject", "Receipt #"+job.Sale.ID)
	m.SetBody("text/plain", job.Text)
	return m
}

func (p MailPrinter) Print(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Dialer != nil {
		return errors.Wrap(gomail.Send(p.Dialer, p.message(job)), "send receipt mail")
	}
	d := gomail.NewDialer(p.Host, p.Port, p.Username, p.Password)
	return errors.Wrap(d.DialAndSend(p.message(job)), "send receipt mail")
}

// MultiPrinter delivers to every sink, returning the first failure
type MultiPrinter []Printer

func (m MultiPrinter) Print(ctx context.Context, job Job) error {
	var first error
	for _, p := range m {
		if err := p.Print(ctx, job); err != nil && first == nil {
			first = err
		}
	}
	return first
}
