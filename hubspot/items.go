package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhiya492/integrations-technical-assessment/integration"
)

// resources lists the CRM endpoints GetItems walks, in output order.
var resources = []struct {
	endpoint     string
	itemType     integration.ItemType
	categoryID   string
	categoryName string
}{
	{"/crm/v3/objects/contacts", integration.TypeContact, "hubspot_contacts_category", "Contacts"},
	{"/crm/v3/objects/companies", integration.TypeCompany, "hubspot_companies_category", "Companies"},
	{"/crm/v3/objects/deals", integration.TypeDeal, "hubspot_deals_category", "Deals"},
}

// GetItems fetches contacts, companies, and deals with the access token in
// the credential blob and returns them grouped under three synthetic
// category roots. Any failure discards partial results.
func (c *Client) GetItems(ctx context.Context, credentials []byte) ([]integration.Item, error) {
	var creds struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(credentials, &creds); err != nil || creds.AccessToken == "" {
		return nil, ErrInvalidCredentials
	}

	items := make([]integration.Item, 0, len(resources))
	for _, r := range resources {
		items = append(items, integration.Item{
			ID:         r.categoryID,
			Type:       integration.TypeCategory,
			Name:       r.categoryName,
			Directory:  true,
			Visibility: true,
		})
	}
	for _, r := range resources {
		objects, err := c.fetchObjects(ctx, creds.AccessToken, r.endpoint)
		if err != nil {
			return nil, fmt.Errorf("hubspot: fetch items: %w", err)
		}
		for _, obj := range objects {
			items = append(items, c.normalize(obj, r.itemType, r.categoryID))
		}
	}
	return items, nil
}

// normalize maps a raw CRM object into the uniform item representation under
// the given category.
func (c *Client) normalize(obj Object, itemType integration.ItemType, parentID string) integration.Item {
	name, created, modified := displayFields(obj, itemType)
	item := integration.Item{
		ID:         obj.ID,
		Type:       itemType,
		Name:       name,
		ParentID:   parentID,
		URL:        fmt.Sprintf("%s/%ss/%s", c.cfg.AppBaseURL, itemType, obj.ID),
		Visibility: true,
	}
	if t, ok := parseTimestamp(created); ok {
		item.CreationTime = &t
	}
	if t, ok := parseTimestamp(modified); ok {
		item.LastModifiedTime = &t
	}
	return item
}

func displayFields(obj Object, itemType integration.ItemType) (name, created, modified string) {
	switch itemType {
	case integration.TypeContact:
		name = strings.TrimSpace(obj.Properties.FirstName + " " + obj.Properties.LastName)
		if name == "" {
			name = "Contact " + fallbackID(obj)
		}
		return name, obj.Properties.CreateDate, obj.Properties.LastModifiedDate
	case integration.TypeCompany:
		name = obj.Properties.Name
		if name == "" {
			name = "Company " + fallbackID(obj)
		}
		return name, obj.Properties.CreateDate, obj.Properties.HSLastModifiedDate
	case integration.TypeDeal:
		name = obj.Properties.DealName
		if name == "" {
			name = "Deal " + fallbackID(obj)
		}
		return name, obj.Properties.CreateDate, obj.Properties.HSLastModifiedDate
	default:
		return capitalize(string(itemType)) + " " + fallbackID(obj), "", ""
	}
}

func fallbackID(obj Object) string {
	if obj.ID == "" {
		return "Unknown"
	}
	return obj.ID
}

// parseTimestamp accepts the ISO-8601 timestamps HubSpot emits. A malformed
// value counts as absent, never as a failure.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
