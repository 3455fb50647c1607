// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into notification
// log lines. Email/WhatsApp delivery happens outside this service;
// events carry everything a delivery worker needs without querying the
// primary database.
package queue

// Queue names; also used as routing keys on the default exchange.
const (
	ReservationRequestedQueue  = "reservation.requested"
	AnnouncementPublishedQueue = "announcement.published"
)

// ReservationRequestedEvent is published after a reservation row is
// committed so the manager can be notified of the pending request.
type ReservationRequestedEvent struct {
	ReservationID  string `json:"reservation_id"`
	CommonAreaID   string `json:"common_area_id"`
	CommonAreaName string `json:"common_area_name"`
	Matricula      string `json:"matricula"`
	ResidentID     string `json:"resident_id"`
	ResidentName   string `json:"resident_name"`
	Unidade        string `json:"unidade"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Status         string `json:"status"`
	RequestedAt    string `json:"requested_at"`
}

// AnnouncementPublishedEvent is published when a manager creates an
// announcement, carrying the delivery channels requested.
type AnnouncementPublishedEvent struct {
	AnnouncementID string `json:"announcement_id"`
	Matricula      string `json:"matricula"`
	Title          string `json:"title"`
	SendEmail      bool   `json:"send_email"`
	SendWhatsApp   bool   `json:"send_whatsapp"`
	PublishedAt    string `json:"published_at"`
}
