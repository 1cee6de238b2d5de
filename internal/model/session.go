package model

import "slices"

// Session is a scheduled yoga class. Users holds the ids of participants.
type Session struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Date        Time    `json:"date"`
	TeacherID   int64   `json:"teacher_id"`
	Users       []int64 `json:"users"`
	CreatedAt   Time    `json:"createdAt"`
	UpdatedAt   Time    `json:"updatedAt"`
}

func (s *Session) HasUser(userID int64) bool {
	return slices.Contains(s.Users, userID)
}
