package domain

import "time"

// SessionRecord is one entry of the local session log.
type SessionRecord struct {
	ID             int64
	StartTime      time.Time
	SitesVisited   []string
	Detections     int
	TimeSpent      time.Duration
	ProductiveTime time.Duration
	Categories     map[string]time.Duration
	Timestamp      time.Time
}

// CategoryTime is a category with its accumulated viewing time.
type CategoryTime struct {
	Category string        `json:"category"`
	Time     time.Duration `json:"time"`
}

// WeeklyReport aggregates the trailing seven days of session records.
type WeeklyReport struct {
	TotalSites        int            `json:"totalSites"`
	TotalDetections   int            `json:"totalDetections"`
	AvgProductiveTime time.Duration  `json:"avgProductiveTime"`
	TopCategories     []CategoryTime `json:"topCategories"`
	Improvement       float64        `json:"improvement"`
	GeneratedAt       time.Time      `json:"generatedAt"`
}
