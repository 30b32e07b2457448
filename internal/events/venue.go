package events

// Venue is a place where events are held.
type Venue struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Geo         *Geo   `json:"geo,omitempty"`
	Description string `json:"description,omitempty"`
}
