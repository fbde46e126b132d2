package model

import "time"

// Provider ids
const (
	ProviderCredential = "credential"
	ProviderGoogle     = "google"
)

// Account links a user to a sign-in method. Credential accounts carry the
// password hash; social accounts carry the provider tokens.
type Account struct {
	ID                   string     `json:"id" gorm:"primaryKey;size:36"`
	UserID               string     `json:"userId" gorm:"size:36;not null;index"`
	ProviderID           string     `json:"providerId" gorm:"size:32;not null;uniqueIndex:idx_accounts_provider_account"`
	AccountID            string     `json:"accountId" gorm:"size:255;not null;uniqueIndex:idx_accounts_provider_account"`
	Password             *string    `json:"-" gorm:"size:255"`
	AccessToken          *string    `json:"-" gorm:"type:text"`
	RefreshToken         *string    `json:"-" gorm:"type:text"`
	IDToken              *string    `json:"-" gorm:"type:text"`
	AccessTokenExpiresAt *time.Time `json:"-"`
	Scope                *string    `json:"-" gorm:"size:512"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (Account) TableName() string { return "accounts" }

// SocialProfile is what an OAuth provider reports about the signed-in person
type SocialProfile struct {
	ProviderID    string
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
	AccessToken   string
	RefreshToken  string
	IDToken       string
	Expiry        time.Time
	Scope         string
}

// Models lists every table owned by the auth provider, for migrations
func Models() []interface{} {
	return []interface{}{&User{}, &Session{}, &Account{}}
}
