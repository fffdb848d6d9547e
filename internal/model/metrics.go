package model

import "time"

// DashboardMetrics is the manager overview. "Today" starts at midnight UTC.
type DashboardMetrics struct {
	TotalConversations   int64            `json:"total_conversations"`
	ActiveConversations  int64            `json:"active_conversations"`
	PendingConversations int64            `json:"pending_conversations"`
	ResolvedToday        int64            `json:"resolved_today"`
	Attendants           []AttendantStats `json:"attendants"`
	GeneratedAt          time.Time        `json:"generated_at"`
}

type AttendantStats struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Conversations int64  `json:"conversations"`
	ResolvedToday int64  `json:"resolved_today"`
}
