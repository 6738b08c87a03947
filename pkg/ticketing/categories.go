package ticketing

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
)

// CategoryChanges are the fields to change on a category. Nil fields are left as they are.
type CategoryChanges struct {
	Label       *string
	Description *string
	Emoji       *string
}

// CategoryModification is the outcome of ModifyCategory.
type CategoryModification struct {
	// OldLabel is the label before the change.
	OldLabel string

	// Category is the category after the change.
	Category *entities.Category

	// Changed names the fields that were changed.
	Changed []string

	// TicketsUpdated is the number of open tickets moved to the new label.
	TicketsUpdated int
}

// GetCategories returns a copy of the guild's categories in display order.
func (s *Service) GetCategories(guildID string) []*entities.Category {
	var cats []*entities.Category
	s.store.Do(func(doc entities.ConfigDocument) {
		cats = cloneCategories(entities.GetOrInit(doc, guildID).Categories)
	})
	return cats
}

// GetCategory returns a copy of the category with the label, compared case-insensitively.
func (s *Service) GetCategory(guildID, label string) (*entities.Category, error) {
	var cat *entities.Category
	s.store.Do(func(doc entities.ConfigDocument) {
		if c, ok := entities.GetOrInit(doc, guildID).Category(label); ok {
			cat = c.Clone()
		}
	})
	if cat == nil {
		return nil, ErrCategoryNotFound
	}
	return cat, nil
}

// AddCategory appends a new category. ErrCategoryExists is returned when the label is taken.
func (s *Service) AddCategory(ctx context.Context, guildID, label, description, emoji string) (*entities.Category, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrInvalidName
	}

	var cat *entities.Category
	s.store.Do(func(doc entities.ConfigDocument) {
		g := entities.GetOrInit(doc, guildID)
		if g.CategoryIndex(label) >= 0 {
			return
		}
		c := entities.NewCategory(label, description, emoji)
		g.Categories = append(g.Categories, c)
		cat = c.Clone()
	})
	if cat == nil {
		return nil, ErrCategoryExists
	}

	s.categoriesChanged(ctx, guildID)
	return cat, nil
}

// UpsertCategory adds the category, or updates the description of the existing category with that label. The emoji of
// an existing category is only replaced when a new one is given. It reports whether the category was created.
func (s *Service) UpsertCategory(ctx context.Context, guildID, label, description, emoji string) (*entities.Category, bool, error) {
	cat, err := s.AddCategory(ctx, guildID, label, description, emoji)
	if err == nil {
		return cat, true, nil
	} else if !errors.Is(err, ErrCategoryExists) {
		return nil, false, err
	}

	changes := CategoryChanges{Description: &description}
	if strings.TrimSpace(emoji) != "" {
		changes.Emoji = &emoji
	}
	mod, err := s.ModifyCategory(ctx, guildID, label, changes)
	if err != nil {
		return nil, false, err
	}
	return mod.Category, false, nil
}

// ModifyCategory changes the label, description or emoji of a category. Renaming moves every open ticket of the
// category to the new label and updates the ticket channels. A ticket whose channel cannot be updated keeps showing the
// old label until the next reconciliation.
func (s *Service) ModifyCategory(ctx context.Context, guildID, label string, changes CategoryChanges) (*CategoryModification, error) {
	var (
		mod      *CategoryModification
		taken    bool
		affected []*entities.TicketEntry
	)
	s.store.Do(func(doc entities.ConfigDocument) {
		g := entities.GetOrInit(doc, guildID)
		idx := g.CategoryIndex(label)
		if idx < 0 {
			return
		}
		c := g.Categories[idx]

		newLabel := ""
		if changes.Label != nil {
			newLabel = strings.TrimSpace(*changes.Label)
		}
		if newLabel != "" {
			if other := g.CategoryIndex(newLabel); other >= 0 && other != idx {
				taken = true
				return
			}
		}

		mod = &CategoryModification{OldLabel: c.Label}
		if newLabel != "" {
			c.Label = newLabel
			mod.Changed = append(mod.Changed, "label")
		}
		if changes.Description != nil && *changes.Description != "" {
			c.Description = *changes.Description
			mod.Changed = append(mod.Changed, "description")
		}
		if changes.Emoji != nil {
			c.SetEmoji(*changes.Emoji)
			mod.Changed = append(mod.Changed, "emoji")
		}

		if c.Label != mod.OldLabel {
			for _, e := range g.OpenTickets {
				if e.Category == mod.OldLabel {
					e.Category = c.Label
					affected = append(affected, e.Clone())
				}
			}
		}
		mod.TicketsUpdated = len(affected)
		mod.Category = c.Clone()
	})

	switch {
	case taken:
		return nil, ErrCategoryExists
	case mod == nil:
		return nil, ErrCategoryNotFound
	}

	for _, e := range affected {
		s.retagTicket(guildID, e)
	}

	s.categoriesChanged(ctx, guildID)
	return mod, nil
}

// retagTicket brings the channel topic and the panel of a ticket in line with its category. Failures are logged only.
func (s *Service) retagTicket(guildID string, e *entities.TicketEntry) {
	l := s.guildLogger(guildID).With(slog.String(logging.KeyChannel, e.ChannelID.String()))
	if e.ChannelID.IsZero() {
		return
	}

	ch, err := s.platform.Channel(e.ChannelID.String())
	if err != nil {
		l.Warn("Error getting ticket channel after category rename", slog.String(logging.KeyError, err.Error()))
		return
	}
	if _, ok := categoryFromTopic(ch.Topic); ok {
		if _, err := s.platform.EditChannel(ch.ID, &discordgo.ChannelEdit{Topic: TopicFor(e.Category)}); err != nil {
			l.Error("Error updating ticket topic after category rename", slog.String(logging.KeyError, err.Error()))
		}
	}

	if e.MessageID.IsZero() {
		return
	}
	if _, err := s.platform.EditMessage(TicketMessageEdit(e)); err != nil {
		l.Error("Error updating ticket panel after category rename", slog.String(logging.KeyError, err.Error()))
	}
}

// DeleteCategory removes the category with the label. Open tickets of the category are left open.
func (s *Service) DeleteCategory(ctx context.Context, guildID, label string) error {
	removed := false
	s.store.Do(func(doc entities.ConfigDocument) {
		g := entities.GetOrInit(doc, guildID)
		kept := make([]*entities.Category, 0, len(g.Categories))
		for _, c := range g.Categories {
			if strings.EqualFold(c.Label, label) {
				removed = true
				continue
			}
			kept = append(kept, c)
		}
		g.Categories = kept
	})
	if !removed {
		return ErrCategoryNotFound
	}

	s.categoriesChanged(ctx, guildID)
	return nil
}

// MoveCategory moves the category to a 1-based position, clamped to the valid range. It returns the applied position
// and whether the category moved.
func (s *Service) MoveCategory(ctx context.Context, guildID, label string, position int) (int, bool, error) {
	var (
		found bool
		moved bool
		pos   int
	)
	s.store.Do(func(doc entities.ConfigDocument) {
		g := entities.GetOrInit(doc, guildID)
		idx := g.CategoryIndex(label)
		if idx < 0 {
			return
		}
		found = true

		pos = clamp(position, 1, len(g.Categories))
		if idx == pos-1 {
			return
		}

		c := g.Categories[idx]
		g.Categories = slices.Insert(slices.Delete(g.Categories, idx, idx+1), pos-1, c)
		moved = true
	})
	if !found {
		return 0, false, ErrCategoryNotFound
	}
	if moved {
		s.categoriesChanged(ctx, guildID)
	}
	return pos, moved, nil
}

// SetCategoryNotifyRole sets the role mentioned when a ticket of the category is opened. An empty role ID clears it.
func (s *Service) SetCategoryNotifyRole(ctx context.Context, guildID, label, roleID string) (*entities.Category, error) {
	cat, _, err := s.updateCategory(ctx, guildID, label, func(c *entities.Category) bool {
		c.NotifyRoleID = custom.Snowflake(roleID)
		return true
	})
	return cat, err
}

// AddCategoryCloseRole allows the role to manage tickets of the category. It reports false when the role was already
// allowed.
func (s *Service) AddCategoryCloseRole(ctx context.Context, guildID, label, roleID string) (*entities.Category, bool, error) {
	return s.updateCategory(ctx, guildID, label, func(c *entities.Category) bool {
		return c.AddCloseRole(roleID)
	})
}

// RemoveCategoryCloseRole stops the role from managing tickets of the category. It reports false when the role was
// not allowed.
func (s *Service) RemoveCategoryCloseRole(ctx context.Context, guildID, label, roleID string) (*entities.Category, bool, error) {
	return s.updateCategory(ctx, guildID, label, func(c *entities.Category) bool {
		return c.RemoveCloseRole(roleID)
	})
}

// updateCategory applies fn to the category and saves when fn reports a change.
func (s *Service) updateCategory(ctx context.Context, guildID, label string, fn func(c *entities.Category) bool) (*entities.Category, bool, error) {
	var (
		cat     *entities.Category
		changed bool
	)
	s.store.Do(func(doc entities.ConfigDocument) {
		c, ok := entities.GetOrInit(doc, guildID).Category(label)
		if !ok {
			return
		}
		changed = fn(c)
		cat = c.Clone()
	})
	if cat == nil {
		return nil, false, ErrCategoryNotFound
	}
	if changed {
		s.categoriesChanged(ctx, guildID)
	}
	return cat, changed, nil
}

// categoriesChanged saves the configuration and brings the support panel up to date.
func (s *Service) categoriesChanged(ctx context.Context, guildID string) {
	s.store.Save(ctx)

	if _, err := s.RefreshSupportPanel(ctx, guildID); err != nil {
		s.guildLogger(guildID).Warn("Error refreshing support panel", slog.String(logging.KeyError, err.Error()))
	}
}

func cloneCategories(cats []*entities.Category) []*entities.Category {
	out := make([]*entities.Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.Clone())
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
