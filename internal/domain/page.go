package domain

import "time"

// Page is a snapshot of an observed web page handed to the scoring core.
type Page struct {
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Domain     string     `json:"domain"`
	Content    string     `json:"-"`
	Metadata   Metadata   `json:"metadata"`
	Behavioral Behavioral `json:"behavioral"`
	Category   string     `json:"category"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Metadata carries document-level hints extracted next to the main content.
type Metadata struct {
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	Author      string `json:"author,omitempty"`
	OGType      string `json:"ogType,omitempty"`
	Canonical   string `json:"canonical,omitempty"`
	WordCount   int    `json:"wordCount"`
	ImageCount  int    `json:"imageCount"`
	VideoCount  int    `json:"videoCount"`
	LinkCount   int    `json:"linkCount"`
}

// Behavioral holds the lightweight engagement counters of a page view.
type Behavioral struct {
	TimeSpent    time.Duration `json:"timeSpent"`
	ScrollDepth  int           `json:"scrollDepth"`
	Interactions int           `json:"interactions"`
	FocusTime    time.Duration `json:"focusTime"`
	ReadingSpeed int           `json:"readingSpeed"`
}
