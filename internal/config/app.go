package config

// AppConfig — настройки фоновых проходов и почтовых уведомлений.
type AppConfig struct {
	// Интервалы свипов планировщика, в секундах.
	AutoFinishIntervalSec int
	ReminderIntervalSec   int

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
}

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		AutoFinishIntervalSec: getEnvInt("SWEEP_AUTOFINISH_SEC", 60),
		ReminderIntervalSec:   getEnvInt("SWEEP_REMINDER_SEC", 60),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnvInt("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "noreply@restobook.local"),
	}
}

// SMTPEnabled — почта шлётся только при заданном хосте,
// иначе уведомления уходят в лог.
func (c *AppConfig) SMTPEnabled() bool {
	return c.SMTPHost != ""
}
