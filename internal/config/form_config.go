package config

type FormConfig interface {
	GetPasswordMinLength() int
	GetCollectAddress() bool
	GetLoginRedirectPath() string
	GetPlaceholderPassword() string
}

type Forms struct {
	PasswordMinLength   int    `env:"PASSWORD_MIN_LENGTH" envDefault:"4"`
	CollectAddress      bool   `env:"COLLECT_ADDRESS" envDefault:"false"`
	LoginRedirectPath   string `env:"LOGIN_REDIRECT_PATH" envDefault:"/documents"`
	PlaceholderPassword string `env:"CONSENT_PLACEHOLDER_PASSWORD" envDefault:"default-password"`
}

var _ FormConfig = Forms{}

func (f Forms) GetPasswordMinLength() int {
	return f.PasswordMinLength
}

func (f Forms) GetCollectAddress() bool {
	return f.CollectAddress
}

func (f Forms) GetLoginRedirectPath() string {
	return f.LoginRedirectPath
}

// GetPlaceholderPassword is the password sent when a signed-in user accepts
// the service agreement; the session already proves who they are.
func (f Forms) GetPlaceholderPassword() string {
	return f.PlaceholderPassword
}
