package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID               uint64
	Email            string
	Username         string
	Name             string
	Bio              string
	Image            *PublicFile
	PasswordHash     string
	RefreshTokenHash sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PublicFile is a stored avatar object. The Key addresses the object in the
// bucket; the URL is what clients are given.
type PublicFile struct {
	ID  uint64
	Key string
	URL string
}
