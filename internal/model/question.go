package model

import "time"

// Question difficulty levels. Optional — an empty Difficulty means the
// author didn't rate the question.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Question is a crowd-sourced interview experience entry.
//
// Questions are publicly readable; only the original author may update or
// delete one. The author fields are stamped server-side from the verified
// identity at create time, never from the request body.
//
// AuthorUsername is a denormalized snapshot and can go stale after a
// profile edit. Read paths refresh it with a live lookup against the
// users table, and profile edits re-sync AuthorEmail/AuthorUsername in
// bulk. The JSON names (userId, userEmail, username) are the wire
// contract the frontend consumes.
type Question struct {
	ID             string    `json:"id"`
	Company        string    `json:"company"`
	Role           string    `json:"role,omitempty"`
	QuestionTitle  string    `json:"questionTitle"`
	QuestionDetail string    `json:"questionDetail"`
	Difficulty     string    `json:"difficulty,omitempty"`
	Tips           string    `json:"tips,omitempty"`
	AuthorUserID   string    `json:"userId"`
	AuthorEmail    string    `json:"userEmail"`
	AuthorUsername string    `json:"username"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
