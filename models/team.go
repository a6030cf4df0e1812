package models

import "time"

type Team struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"join_code,omitempty"`
	OwnerID   int       `json:"owner_id"`
	LogoKey   *string   `json:"-"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Members []User `json:"members,omitempty"`
}

type TeamMember struct {
	ID       int       `json:"id"`
	TeamID   int       `json:"team_id"`
	UserID   int       `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`

	User *User `json:"user,omitempty"`
}
