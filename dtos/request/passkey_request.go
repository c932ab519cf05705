package request

// RegisterBeginRequest optionally names the key being enrolled; a
// timestamped label is used otherwise.
type RegisterBeginRequest struct {
	KeyName string `json:"key_name"`
}

// AuthenticateBeginRequest identifies the account to authenticate. The
// caller holds no session at this point.
type AuthenticateBeginRequest struct {
	Username string `json:"username" validate:"required"`
}
