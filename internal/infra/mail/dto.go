package mail

// EmailSender holds the SMTP settings used for every outgoing message.
type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
