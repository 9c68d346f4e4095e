package cloud

// Config holds configuration for the AWS SDK.
type Config struct {
	// Region is the AWS region for regional services.
	Region string `mapstructure:"region" default:"us-east-1"`
	// Profile selects a shared config profile. Empty uses the default chain.
	Profile string `mapstructure:"profile" default:""`
	// AccessKeyID and SecretAccessKey set static credentials when both are present.
	AccessKeyID     string `mapstructure:"access_key_id" default:""`
	SecretAccessKey string `mapstructure:"secret_access_key" default:""`
	// SessionToken is optional for temporary credentials.
	SessionToken string `mapstructure:"session_token" default:""`
	// MaxAttempts bounds SDK retries per call.
	MaxAttempts int `mapstructure:"max_attempts" default:"5"`
}
