package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CaptainID int       `json:"captain_id" db:"captain_id"`
	Wins      int       `json:"wins" db:"wins"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
