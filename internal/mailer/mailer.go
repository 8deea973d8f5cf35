package mailer

import (
	"fmt"

	"tugas-api/configs"
	"tugas-api/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var (
	dialer *gomail.Dialer
	from   string
)

// Init menyiapkan koneksi SMTP. Jika SMTP_HOST kosong,
// pengiriman email dimatikan (berguna untuk testing).
func Init(cfg configs.Config) {
	if cfg.SMTPHost == "" {
		logger.SystemLogger.Info("SMTP not configured, outgoing mail disabled")
		return
	}
	dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	from = cfg.MailFrom
}

// send mengirim email secara fire-and-forget: dijalankan pada goroutine
// terpisah, kegagalan hanya dicatat dan tidak pernah menggagalkan request.
func send(to, subject, body string) {
	if dialer == nil {
		return
	}
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	go func() {
		if err := dialer.DialAndSend(m); err != nil {
			logger.ErrorLogger.Error("Error sending mail",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}()
}

// SendWelcome mengirim email sambutan setelah signup.
func SendWelcome(email, name string) {
	send(email, "Welcome to the Task Manager",
		fmt.Sprintf("Hello %s. Welcome to the app, let us know how you get along.", name))
}

// SendFarewell mengirim email perpisahan saat akun dihapus.
func SendFarewell(email, name string) {
	send(email, "We're sorry to see you go!",
		fmt.Sprintf("Hello %s. If you have the time, please let us know why you've left.", name))
}
