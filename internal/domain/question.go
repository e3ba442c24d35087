package domain

import "time"

// Question is a user-owned post. A non-nil DeletedAt hides it from every
// default read path; rows are never physically removed.
type Question struct {
	ID        string
	Title     string
	Body      string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time

	// AuthorName, AuthorEmail and AnswerCount are filled by projection
	// queries, not stored on the questions table.
	AuthorName  string
	AuthorEmail string
	AnswerCount int
	Answers     []Answer
}

// Answer belongs to a question and an owning user. Soft-deleted like Question.
type Answer struct {
	ID         string
	Body       string
	UserID     string
	QuestionID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}
