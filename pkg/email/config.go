package email

// Config holds email service configuration. The Postmark tokens are optional
// so development environments can fall back to the file-based sender.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"no-reply@readershaven.app"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@readershaven.app"`
	DevOutputDir         string `env:"EMAIL_DEV_OUTPUT_DIR" envDefault:"./tmp/emails"`
}
