package integration

import "time"

// ItemType classifies an Item within the catalog browser.
type ItemType string

const (
	TypeContact  ItemType = "contact"
	TypeCompany  ItemType = "company"
	TypeDeal     ItemType = "deal"
	TypeCategory ItemType = "category"
)

// Item is the uniform record every provider emits. Items with TypeCategory
// are synthetic roots; leaf items point at their category through ParentID,
// forming a two-level tree.
type Item struct {
	ID               string     `json:"id"`
	Type             ItemType   `json:"type"`
	Name             string     `json:"name"`
	ParentID         string     `json:"parent_id,omitempty"`
	CreationTime     *time.Time `json:"creation_time,omitempty"`
	LastModifiedTime *time.Time `json:"last_modified_time,omitempty"`
	URL              string     `json:"url,omitempty"`
	Directory        bool       `json:"directory"`
	Visibility       bool       `json:"visibility"`
}
