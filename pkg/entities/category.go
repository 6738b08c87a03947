package entities

import (
	"strings"

	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
)

// EmojiUnset is stored in place of an empty emoji. Select menu options do not accept an empty emoji string.
const EmojiUnset = " "

// Category is a kind of ticket a user can open.
type Category struct {
	// Label is the name of the category. It is unique per guild, ignoring case.
	Label string `json:"label"`

	// Description is shown under the label in the selector.
	Description string `json:"description"`

	// Emoji is shown next to the label. EmojiUnset when there is none.
	Emoji string `json:"emoji"`

	// NotifyRoleID is the role that is mentioned when a ticket of this category is opened.
	NotifyRoleID custom.Snowflake `json:"notify_role_id"`

	// CloseRoleIDs are the roles that can resolve and close tickets of this category.
	CloseRoleIDs []custom.Snowflake `json:"close_role_ids"`
}

// NewCategory creates a category with no roles attached.
func NewCategory(label, description, emoji string) *Category {
	c := &Category{
		Label:        label,
		Description:  description,
		CloseRoleIDs: make([]custom.Snowflake, 0),
	}
	c.SetEmoji(emoji)
	return c
}

// DefaultCategories are the categories every guild starts with.
func DefaultCategories() []*Category {
	return []*Category{
		NewCategory("Staff Management", "Applications, roles or rank up", "\U0001F530"),
		NewCategory("Partnership", "Partnership request", "\U0001F91D"),
		NewCategory("Other", "Any other request", "❓"),
	}
}

// SetEmoji stores the emoji, using EmojiUnset for blank values.
func (c *Category) SetEmoji(emoji string) {
	if strings.TrimSpace(emoji) == "" {
		c.Emoji = EmojiUnset
		return
	}
	c.Emoji = emoji
}

// DisplayEmoji returns the emoji, or an empty string when none is set.
func (c *Category) DisplayEmoji() string {
	if strings.TrimSpace(c.Emoji) == "" {
		return ""
	}
	return c.Emoji
}

// HasCloseRole reports whether the role may close tickets of this category.
func (c *Category) HasCloseRole(roleID string) bool {
	for _, id := range c.CloseRoleIDs {
		if string(id) == roleID {
			return true
		}
	}
	return false
}

// AddCloseRole adds the role to the close roles. It returns false if the role was already present.
func (c *Category) AddCloseRole(roleID string) bool {
	if c.HasCloseRole(roleID) {
		return false
	}
	c.CloseRoleIDs = append(c.CloseRoleIDs, custom.Snowflake(roleID))
	return true
}

// RemoveCloseRole removes the role from the close roles. It returns false if the role was not present.
func (c *Category) RemoveCloseRole(roleID string) bool {
	kept := make([]custom.Snowflake, 0, len(c.CloseRoleIDs))
	for _, id := range c.CloseRoleIDs {
		if string(id) != roleID {
			kept = append(kept, id)
		}
	}
	removed := len(kept) != len(c.CloseRoleIDs)
	c.CloseRoleIDs = kept
	return removed
}

// Clone returns a deep copy of the category.
func (c *Category) Clone() *Category {
	cp := *c
	cp.CloseRoleIDs = append(make([]custom.Snowflake, 0, len(c.CloseRoleIDs)), c.CloseRoleIDs...)
	return &cp
}
