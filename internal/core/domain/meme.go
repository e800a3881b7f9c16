package domain

type Meme struct {
	ID          int    `json:"id"`
	ImageURL    string `json:"image_url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}
