package lib

import (
	"ddtours/src/config"
	"log"

	"github.com/wneessen/go-mail"
)

func GetSMTPClient(cfg *config.Config) (*mail.Client, error) {
	c, err := mail.NewClient(
		cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUser),
		mail.WithPassword(cfg.SMTPPassword),
	)
	if err != nil {
		log.Printf("Could not initialize smtp client: %s\n", err.Error())
		return nil, err
	}
	return c, nil
}

type SendMailInput struct {
	From     string
	FromName string
	To       []string
	Cc       []string
	Bcc      []string
	ReplyTo  string
	Subject  string
	Body     string
	Html     bool
}

func NewMailMsg(input *SendMailInput) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(input.FromName, input.From); err != nil {
		log.Printf("Failed to set From address: %s\n", err.Error())
		return nil, err
	}
	if err := msg.To(input.To...); err != nil {
		log.Printf("Failed to set To address: %s\n", err.Error())
		return nil, err
	}
	if input.ReplyTo != "" {
		if err := msg.ReplyTo(input.ReplyTo); err != nil {
			log.Printf("Failed to set ReplyTo address: %s\n", err.Error())
		}
	}
	if len(input.Cc) > 0 {
		if err := msg.Cc(input.Cc...); err != nil {
			log.Printf("Failed to set Cc address: %s\n", err.Error())
		}
	}
	if len(input.Bcc) > 0 {
		if err := msg.Bcc(input.Bcc...); err != nil {
			log.Printf("Failed to set Bcc address: %s\n", err.Error())
		}
	}
	msg.Subject(input.Subject)
	if input.Html {
		msg.SetBodyString(mail.TypeTextHTML, input.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, input.Body)
	}
	return msg, nil
}
