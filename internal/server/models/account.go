package models

import "time"

// Account is a registered user: login name, password hash and the TOTP
// shared secret, stored only in encrypted form.
type Account struct {
	ID              string    `db:"id" bson:"-" json:"id"`
	Username        string    `db:"username" bson:"username" json:"username"`
	PasswordHash    string    `db:"password_hash" bson:"password_hash" json:"password_hash"`
	EncryptedSecret []byte    `db:"encrypted_secret" bson:"encrypted_secret" json:"encrypted_secret"`
	CreatedAt       time.Time `db:"created_at" bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" bson:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy so callers cannot alias stored byte slices.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.EncryptedSecret = append([]byte(nil), a.EncryptedSecret...)
	return &c
}
