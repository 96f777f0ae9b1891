package sources

import (
	"fmt"
	"time"

	"researchhub/researchhub/types"
)

// ApplyUserUpdate copies the values in updates onto u. Values must carry the
// Go type of the target field.
func ApplyUserUpdate(u *types.User, updates map[string]any) error {
	if err := CheckUserUpdate(updates); err != nil {
		return err
	}
	for key, value := range updates {
		var ok bool
		switch key {
		case FieldFullName:
			u.FullName, ok = value.(string)
		case FieldIsActive:
			u.IsActive, ok = value.(bool)
		case FieldLastLogin:
			var t time.Time
			if t, ok = value.(time.Time); ok {
				u.LastLogin = &t
			}
		case FieldPreferences:
			u.Preferences, ok = value.(map[string]any)
		}
		if !ok {
			return fmt.Errorf("invalid value type %T for %s", value, key)
		}
	}
	return nil
}

// ApplyConversationUpdate copies the values in updates onto c and stamps
// UpdatedAt with now.
func ApplyConversationUpdate(c *types.Conversation, updates map[string]any, now time.Time) error {
	if err := CheckConversationUpdate(updates); err != nil {
		return err
	}
	for key, value := range updates {
		var ok bool
		switch key {
		case FieldTitle:
			c.Title, ok = value.(string)
		case FieldCategory:
			c.Category, ok = value.(*string)
		case FieldTags:
			c.Tags, ok = value.([]string)
		case FieldIsArchived:
			c.IsArchived, ok = value.(bool)
		case FieldSourcesUsed:
			c.SourcesUsed, ok = value.([]map[string]any)
		}
		if !ok {
			return fmt.Errorf("invalid value type %T for %s", value, key)
		}
	}
	c.UpdatedAt = now
	return nil
}
