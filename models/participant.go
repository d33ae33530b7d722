package models

import "time"

type HackathonParticipant struct {
	ID          int       `json:"id"`
	HackathonID int       `json:"hackathon_id"`
	UserID      int       `json:"user_id"`
	JoinedAt    time.Time `json:"joined_at"`
}
