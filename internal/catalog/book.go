// ABOUTME: Book and Author records as served by the remote catalog service
// ABOUTME: JSON tags follow the service wire format (_id, coverImage, createdAt)

package catalog

import (
	"encoding/json"
	"time"
)

// Author is the optional author reference embedded in a book.
type Author struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts both a populated author object and a bare id string.
func (a *Author) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*a = Author{ID: id}
		return nil
	}

	type plain Author
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Author(p)
	return nil
}

// Book is a catalog entry. ID is stable and doubles as row key and mutation target.
type Book struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Genre      string    `json:"genre"`
	Author     *Author   `json:"author,omitempty"`
	CoverImage string    `json:"coverImage"`
	File       string    `json:"file,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// AuthorName returns the author's display name, or "" when there is no author.
func (b Book) AuthorName() string {
	if b.Author == nil {
		return ""
	}
	return b.Author.Name
}

// CreatedLabel formats the creation time the way the console lists it.
func (b Book) CreatedLabel() string {
	if b.CreatedAt.IsZero() {
		return ""
	}
	return b.CreatedAt.Local().Format("2 Jan 2006, 03:04 PM")
}
