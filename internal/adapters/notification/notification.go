// Package notification delivers transactional mail for the order and account
// workflows. Delivery is fire-and-forget: failures are logged, never retried.
package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/platemart/platemart/internal/adapters/store/model"
)

type Config struct {
	Host       string `env:"MAIL_HOST" envDefault:"localhost"`
	Port       string `env:"MAIL_PORT" envDefault:"587"`
	Username   string `env:"MAIL_USERNAME"`
	Password   string `env:"MAIL_PASSWORD"`
	From       string `env:"MAIL_FROM" envDefault:"orders@platemart.io"`
	FromName   string `env:"MAIL_FROM_NAME" envDefault:"Platemart"`
	ConfirmURL string `env:"ORDER_CONFIRM_URL" envDefault:"http://localhost:8080/api/user/orders"`
}

type Notifier struct {
	log *zap.Logger
	cfg *Config
}

type option func(*Notifier)

func Logger(log *zap.Logger) option {
	return func(n *Notifier) {
		if log != nil {
			n.log = log
		}
	}
}

func New(cfg *Config, options ...option) *Notifier {
	n := &Notifier{
		log: zap.NewNop(),
		cfg: cfg,
	}

	for _, opt := range options {
		opt(n)
	}

	return n
}

func (n *Notifier) NewOrder(user model.User, order model.Order, confirmCode string) {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nwe received your order for %s (%d %s).\r\n"+
			"Confirm it at %s/%s/execute with code:\r\n\r\n%s\r\n",
		user.Name, order.Dish.Name, order.Amount, order.Currency,
		n.cfg.ConfirmURL, order.ID, confirmCode,
	)
	n.send(user.Email, fmt.Sprintf("Your order %s", order.ID), body)
}

func (n *Notifier) OrderSuccessful(user model.User, order model.Order) {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nyour order for %s was charged successfully. Bon appetit!\r\n",
		user.Name, order.Dish.Name,
	)
	n.send(user.Email, fmt.Sprintf("Order %s confirmed", order.ID), body)
}

func (n *Notifier) OrderFailed(user model.User, order model.Order) {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nwe could not charge your card for %s. "+
			"No money was taken, please place the order again.\r\n",
		user.Name, order.Dish.Name,
	)
	n.send(user.Email, fmt.Sprintf("Order %s failed", order.ID), body)
}

func (n *Notifier) OrderDeclined(user model.User, order model.Order) {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nthe caterer declined your order for %s. "+
			"Your card was not charged.\r\n",
		user.Name, order.Dish.Name,
	)
	n.send(user.Email, fmt.Sprintf("Order %s declined", order.ID), body)
}

func (n *Notifier) Registration(user model.User, code string) {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nwelcome to Platemart. Confirm your registration with code:\r\n\r\n%s\r\n",
		user.Name, code,
	)
	n.send(user.Email, "Confirm your registration", body)
}

func (n *Notifier) PasswordReset(user model.User, code string) {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nuse this code to reset your password:\r\n\r\n%s\r\n",
		user.Name, code,
	)
	n.send(user.Email, "Password reset", body)
}

func (n *Notifier) send(to, subject, body string) {
	if n.cfg.Username == "" {
		n.log.Debug("mail delivery disabled, skipping",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return
	}

	from := fmt.Sprintf("%s <%s>", n.cfg.FromName, n.cfg.From)
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	addr := n.cfg.Host + ":" + n.cfg.Port
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(b.String())); err != nil {
		n.log.Error("failed send mail",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return
	}

	n.log.Debug("mail sent", zap.String("to", to), zap.String("subject", subject))
}
