package model

// A User represents an account database record.
type User struct {
	Base `msgpack:",inline" storm:"inline"`

	Email    string `msgpack:"email" storm:"unique"`
	Password string `msgpack:"password,omitempty"`

	// Unix timestamp of the last password change.
	// Tokens issued before it are revoked.
	PasswordUpdatedAt int64 `msgpack:"password_updated_at"`
}
