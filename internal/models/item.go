package models

// ItemID identifies an item within a tier list
type ItemID = int64

// Item represents an item that can be ranked in a tier list
type Item struct {
	ID    ItemID  `json:"id"`
	Name  string  `json:"name"`
	URL   string  `json:"url"`
	Thumb *string `json:"thumb,omitempty"` // Path to a locally cached image, nil = no thumbnail
}

// Clone returns a copy whose Thumb does not alias the original
func (it Item) Clone() Item {
	if it.Thumb != nil {
		thumb := *it.Thumb
		it.Thumb = &thumb
	}
	return it
}

// HasThumb reports whether the item references a thumbnail file
func (it Item) HasThumb() bool {
	return it.Thumb != nil && *it.Thumb != ""
}
