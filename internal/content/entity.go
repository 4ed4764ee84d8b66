// AngelaMos | 2026
// entity.go

package content

import (
	"time"
)

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type News struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Category      []string  `json:"category"`
	Important     bool      `json:"important"`
	PublishedDate time.Time `json:"publishedDate"`
	EndDate       time.Time `json:"endDate"`
	PublishedAt   time.Time `json:"publishedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Blog struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	Category    []string   `json:"category"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
	PublishDate time.Time  `json:"publishDate"`
	PublishedAt time.Time  `json:"publishedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Page mirrors the list envelope returned by the CMS.
type Page[T any] struct {
	Contents   []T `json:"contents"`
	TotalCount int `json:"totalCount"`
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
}
