package models

import (
	"strings"
	"time"
	"unicode"
)

// DateLayout is the wire and storage format of task due dates.
const DateLayout = "2006-01-02"

// User is a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Fullname     string    `json:"fullname"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Initials derives up to two upper-case letters from the display name.
func (u User) Initials() string {
	words := strings.Fields(u.Fullname)
	if len(words) == 0 {
		return ""
	}
	first := firstRune(words[0])
	if len(words) == 1 {
		return first
	}
	return first + firstRune(words[len(words)-1])
}

func firstRune(s string) string {
	for _, r := range s {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// DisplayName is the name shown next to authored content.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Fullname) != "" {
		return u.Fullname
	}
	return u.Email
}

// Compact returns the public view embedded in boards and tasks.
func (u User) Compact() UserCompact {
	return UserCompact{ID: u.ID, Email: u.Email, Fullname: u.Fullname}
}

// UserCompact is the public representation of a user.
type UserCompact struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

// Role is a user's relationship to a board.
type Role string

const (
	RoleCreator Role = "creator"
	RoleMember  Role = "member"
)

// Board groups tasks and carries the membership roster used for access checks.
type Board struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	OwnerID   int64     `json:"owner_id"`
	MemberIDs []int64   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// BoardSummary is the list representation of a board with task counters.
type BoardSummary struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	MemberCount        int    `json:"member_count"`
	TicketCount        int    `json:"ticket_count"`
	TasksToDoCount     int    `json:"tasks_to_do_count"`
	TasksHighPrioCount int    `json:"tasks_high_prio_count"`
	OwnerID            int64  `json:"owner_id"`
}

// TaskStatus is the workflow column of a task.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "to-do"
	StatusInProgress TaskStatus = "in-progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// TaskPriority ranks tasks on a board.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work that belongs to exactly one board.
type Task struct {
	ID            int64        `json:"id"`
	BoardID       int64        `json:"board"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        TaskStatus   `json:"status"`
	Priority      TaskPriority `json:"priority"`
	AssigneeID    *int64       `json:"-"`
	ReviewerID    *int64       `json:"-"`
	Assignee      *UserCompact `json:"assignee"`
	Reviewer      *UserCompact `json:"reviewer"`
	DueDate       string       `json:"due_date"`
	CommentsCount int          `json:"comments_count"`
	CreatedBy     int64        `json:"created_by"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Comment is a note authored on a task.
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"-"`
	AuthorID  int64     `json:"-"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// BoardDetail is the single-board view with roster and tasks.
type BoardDetail struct {
	ID      int64         `json:"id"`
	Title   string        `json:"title"`
	OwnerID int64         `json:"owner_id"`
	Members []UserCompact `json:"members"`
	Tasks   []Task        `json:"tasks"`
}

// BoardOwnerView is returned after a board update.
type BoardOwnerView struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	OwnerData   UserCompact   `json:"owner_data"`
	MembersData []UserCompact `json:"members_data"`
}
