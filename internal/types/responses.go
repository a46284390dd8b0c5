package types

import (
	"time"

	"github.com/monocle-dev/tracker/internal/ids"
)

type UserResponse struct {
	ID    ids.ID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ProjectResponse struct {
	ID          ids.ID         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	OwnerID     ids.ID         `json:"ownerId"`
	Owner       *UserResponse  `json:"owner,omitempty"`
	Members     []UserResponse `json:"members"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type TicketResponse struct {
	ID           ids.ID         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Priority     TicketPriority `json:"priority"`
	Status       TicketStatus   `json:"status"`
	ProjectID    ids.ID         `json:"projectId"`
	ProjectTitle string         `json:"projectTitle,omitempty"`
	Assignee     *UserResponse  `json:"assignee"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type CommentResponse struct {
	ID        ids.ID        `json:"id"`
	TicketID  ids.ID        `json:"ticketId"`
	ParentID  *ids.ID       `json:"parentId"`
	Comment   string        `json:"comment"`
	Author    *UserResponse `json:"user"`
	CreatedAt time.Time     `json:"createdAt"`
}

type InviteResponse struct {
	ID        ids.ID       `json:"id"`
	ProjectID ids.ID       `json:"projectId"`
	Email     string       `json:"email"`
	Status    InviteStatus `json:"status"`
	ExpiresAt time.Time    `json:"expiresAt"`
	CreatedAt time.Time    `json:"createdAt"`
}

type DashboardStats struct {
	TotalProjects      int64 `json:"totalProjects"`
	ActiveTicketsCount int64 `json:"activeTicketsCount"`
	HighPriorityCount  int64 `json:"highPriorityCount"`
}
