package domain

// News is an announcement shown to every client.
type News struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
	Date        string `json:"date"`
}
