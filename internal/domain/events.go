package domain

// EventKind identifies the typed event a pipeline branch produced.
type EventKind string

const (
	EventAnalysis        EventKind = "analysis"
	EventMenu            EventKind = "menu"
	EventRestock         EventKind = "restock"
	EventProcurementPlan EventKind = "procurement-plan"
)

// MessageView is the wire shape of a message inside a broadcast.
type MessageView struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	IsBot     bool   `json:"is_bot"`
	CreatedAt string `json:"created_at"`
}

// MessageBroadcast is the payload fanned out when a chat message is posted.
type MessageBroadcast struct {
	Type    string      `json:"type"` // always "message"
	RoomID  int64       `json:"room_id"`
	Message MessageView `json:"message"`
}

// AIEvent is the payload fanned out when a pipeline branch produces a
// structured result.
type AIEvent struct {
	Type      string    `json:"type"` // always "ai_event"
	Event     EventKind `json:"event"`
	RoomID    int64     `json:"room_id"`
	Narrative string    `json:"narrative"`
	Payload   any       `json:"payload"`
}
