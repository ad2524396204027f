package store

// User is a persisted identity. Only the bcrypt hash of the password is stored.
type User struct {
	Username     string
	PasswordHash string
	CreatedTs    int64
}

type FindUser struct {
	Username *string
}
