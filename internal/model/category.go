package model

import (
	"fmt"
	"hash/fnv"
	"time"
)

// SystemOwnerID owns the shared, read-only default categories visible to all
// users. It is never a valid login identity.
const SystemOwnerID = "00000000-0000-0000-0000-000000000000"

// DevOwnerID is the fixed identity used by the development authenticator.
// It must only be wired in non-production configuration.
const DevOwnerID = "00000000-0000-0000-0000-000000000001"

// DefaultCategoryIcon is assigned to categories created without an explicit
// icon, e.g. during commit of an unresolved label.
const DefaultCategoryIcon = "payments"

// Category is an expense category. OwnerID is either SystemOwnerID (shared
// default) or a user's id (custom, owned). Names are unique per owner,
// case-insensitively; a user category with the same name as a system one
// shadows it for lookups in that user's scope.
type Category struct {
	CreatedAt time.Time `json:"createdAt"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	ID        int64     `json:"id"`
}

// IsSystem reports whether the category is a shared default.
func (c *Category) IsSystem() bool {
	return c.OwnerID == SystemOwnerID
}

var fallbackPalette = []string{
	"#ef4444", "#eab308", "#3b82f6", "#a855f7",
	"#ec4899", "#8b5cf6", "#22c55e", "#f97316",
}

// FallbackColor picks a deterministic color for a category name, so the same
// label always gets the same color regardless of which commit created it.
func FallbackColor(name string) string {
	h := fnv.New32a()
	_, _ = fmt.Fprint(h, name)
	return fallbackPalette[h.Sum32()%uint32(len(fallbackPalette))]
}
