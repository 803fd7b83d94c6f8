package domain

import "time"

// News item categories as delivered by the backend.
const (
	NewsCategoryNews  = "news"
	NewsCategoryEvent = "event"
)

// NewsItem is owned by the external backend; this service only reads,
// sorts and filters loaded items.
type NewsItem struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt,omitempty"`
	Image         string     `json:"image,omitempty"`
	Category      string     `json:"category"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	EventLocation string     `json:"event_location,omitempty"`
	Active        bool       `json:"active"`
	Featured      bool       `json:"featured"`
	Tags          []string   `json:"tags"`
	CreatedAt     time.Time  `json:"created_at"`
}

// DisplayDate is the date shown for the item: the event date when one
// exists, otherwise the creation timestamp.
func (n NewsItem) DisplayDate() time.Time {
	if n.EventDate != nil {
		return *n.EventDate
	}
	return n.CreatedAt
}
