package config

var Conf Config

type Config struct {
	Application Application `yaml:"application" json:"application"`
}

type Application struct {
	DisplayName string     `yaml:"display-name" json:"display_name"`
	Server      Server     `yaml:"server" json:"server"`
	Datasource  Datasource `yaml:"datasource" json:"datasource"`
	Migration   string     `yaml:"migration"`
	Security    Security   `yaml:"security" json:"security"`
	Redis       Redis      `yaml:"redis" json:"redis"`
	Kafka       Kafka      `yaml:"kafka" json:"kafka"`
	WebAuthn    WebAuthn   `yaml:"webauthn" json:"webauthn"`
}

type Server struct {
	ContextPath string `yaml:"context-path" json:"context_path"`
	ApiVersion  string `yaml:"api-version" json:"api_version"`
	Port        string `yaml:"port"`
}

type Datasource struct {
	PrimaryURL            string `yaml:"primary-url" json:"primary_url"`
	MaxIdleConnections    int    `yaml:"max-idle-connections" json:"max_idle_connections"`
	MaxOpenConnections    int    `yaml:"max-open-connections" json:"max_open_connections"`
	ConnectionMaxLifetime int    `yaml:"connection-max-lifetime" json:"connection_max_lifetime"`
}

type Security struct {
	Secret                              string `yaml:"secret" json:"-"`
	Issuer                              string `yaml:"issuer" json:"issuer"`
	TokenValidityInSeconds              int    `yaml:"token-validity-in-seconds" json:"token_validity_in_seconds"`
	TokenValidityInSecondsForRememberMe int    `yaml:"token-validity-in-seconds-for-remember-me" json:"token_validity_in_seconds_for_remember_me"`
}

type Redis struct {
	Host string `yaml:"address" json:"address"`
}

type Kafka struct {
	Brokers          []string `yaml:"brokers" json:"brokers"`
	ProfileSyncTopic string   `yaml:"profile-sync-topic" json:"profile_sync_topic"`
}

type WebAuthn struct {
	RpDisplayName string `yaml:"rp-display-name" json:"rp_display_name"`
	// RpID and RpOrigin pin the relying-party context. Left empty, the
	// context is derived from each request instead.
	RpID     string `yaml:"rp-id" json:"rp_id"`
	RpOrigin string `yaml:"rp-origin" json:"rp_origin"`
	// SignCountPolicy is "strict" or "lenient". Strict rejects any
	// non-increasing sign counter as a cloned authenticator; lenient logs a
	// warning and proceeds. Strict is the default.
	SignCountPolicy     string `yaml:"sign-count-policy" json:"sign_count_policy"`
	ChallengeTTLSeconds int    `yaml:"challenge-ttl-seconds" json:"challenge_ttl_seconds"`
	TimeoutMillis       int    `yaml:"timeout-millis" json:"timeout_millis"`
}
