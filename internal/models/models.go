package models

import "time"

type AdviceCard struct {
	ID              string `json:"id"`
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	ImageURL        string `json:"imageUrl"`
	QuoteText       string `json:"quoteText,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

type AdviceItem struct {
	ID                string    `json:"id"`
	NotionID          string    `json:"notionId"`
	Title             string    `json:"title"`
	Slug              string    `json:"slug"`
	ImageURL          string    `json:"imageUrl,omitempty"`
	OptimizedImageURL string    `json:"optimizedImageUrl,omitempty"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type AdviceStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

type NotionEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}
