package models

// Category groups photos. The type is declared in the schema but not
// registered, so no store persists it yet.
type Category struct {
	ID          string      `json:"_id"`
	Type        string      `json:"_type"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Image       *ImageField `json:"image,omitempty"`
}
