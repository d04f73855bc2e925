// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// Item is a marketplace listing. CreatedAt is the insertion timestamp: it is
// assigned once at creation and never updated, and it drives recency ordering.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Categories  []string  `json:"categories"`
	OwnerID     string    `json:"owner_id"`
	ImageURLs   []string  `json:"image_urls"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewItem carries the client-supplied fields of an item.
// ID and CreatedAt are assigned by the service.
type NewItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Categories  []string `json:"categories"`
	OwnerID     string   `json:"owner_id"`
	ImageURLs   []string `json:"image_urls"`
}

// RecentPage is one page of the newest items. NoMoreResults reports that no
// page exists beyond this one.
type RecentPage struct {
	Items         []Item `json:"items"`
	NoMoreResults bool   `json:"no_more_results"`
}
