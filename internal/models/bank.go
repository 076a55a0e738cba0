package models

import "time"

type Bank struct {
	ID            int       `json:"id" example:"1"`
	Name          string    `json:"name" example:"Bank A"`
	AssignedUsers int       `json:"assignedUsers" example:"150"`
	CreatedAt     time.Time `json:"createdAt"`
}
