package model

import "time"

// Announcement mirrors the `announcements` table. Announcements are
// scoped to one condominium and may be pushed to residents over email
// and/or WhatsApp; the Sent flags record which channels were requested.
// Delivery itself happens outside this service, driven by the
// announcement.published event.
type Announcement struct {
	ID           string
	Matricula    string
	Title        string
	Content      string
	SentEmail    bool
	SentWhatsApp bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
