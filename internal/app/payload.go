package app

import (
	"time"

	"placement/api/internal/company"
	"placement/api/internal/diff"
	"placement/api/internal/fieldmap"
	"placement/api/internal/store"
)

const unassignedOfficer = "Unassigned"

func userPayload(user store.User) map[string]any {
	return map[string]any{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func usersPayload(users []store.User) []map[string]any {
	items := make([]map[string]any, 0, len(users))
	for _, user := range users {
		items = append(items, userPayload(user))
	}
	return items
}

// companyPayload flattens a record into the schema field names plus the
// joined officer name.
func companyPayload(item store.Company) map[string]any {
	payload := map[string]any{
		"id":        item.ID,
		"createdAt": item.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for _, entry := range company.Snapshot(item).Entries() {
		payload[entry.Key] = entry.Value
	}
	payload["assignedOfficerName"] = unassignedOfficer
	if item.AssignedOfficerID != nil && item.AssignedOfficerName != "" {
		payload["assignedOfficerName"] = item.AssignedOfficerName
	}
	return payload
}

func proposalPayload(item store.Proposal) map[string]any {
	payload := map[string]any{
		"id":             item.ID,
		"companyId":      item.CompanyID,
		"officerId":      item.OfficerID,
		"companyName":    item.CompanyName,
		"officerName":    item.OfficerName,
		"original":       item.Original,
		"requested":      item.Requested,
		"status":         string(item.Status),
		"reviewedBy":     nil,
		"reviewedByName": nil,
		"reviewedAt":     nil,
		"createdAt":      item.CreatedAt.UTC().Format(time.RFC3339),
	}
	if item.ReviewedBy != nil {
		payload["reviewedBy"] = *item.ReviewedBy
		payload["reviewedByName"] = item.ReviewedByName
	}
	if item.ReviewedAt != nil {
		payload["reviewedAt"] = item.ReviewedAt.UTC().Format(time.RFC3339)
	}
	return payload
}

func diffPayload(item store.Proposal) []map[string]any {
	changes := diff.Compute(item.Original, item.Requested)
	rows := make([]map[string]any, 0, len(changes))
	for _, change := range changes {
		rows = append(rows, map[string]any{
			"field":   change.Field,
			"label":   company.Label(change.Field),
			"before":  sideValue(change.Before, change.BeforeSet),
			"after":   sideValue(change.After, change.AfterSet),
			"changed": change.Changed(),
		})
	}
	return rows
}

func sideValue(value fieldmap.Value, set bool) any {
	if !set {
		return nil
	}
	return value
}
