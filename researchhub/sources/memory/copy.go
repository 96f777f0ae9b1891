package memory

import "researchhub/researchhub/types"

func copyUser(u *types.User) *types.User {
	out := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		out.LastLogin = &t
	}
	out.Preferences = copyMap(u.Preferences)
	return &out
}

func copyConversation(c *types.Conversation) *types.Conversation {
	out := *c
	if c.Category != nil {
		cat := *c.Category
		out.Category = &cat
	}
	if c.Tags != nil {
		out.Tags = append([]string{}, c.Tags...)
	}
	if c.Messages != nil {
		out.Messages = make([]types.Message, len(c.Messages))
		for i, m := range c.Messages {
			m.Metadata = copyMap(m.Metadata)
			out.Messages[i] = m
		}
	}
	if c.SourcesUsed != nil {
		out.SourcesUsed = make([]map[string]any, len(c.SourcesUsed))
		for i, src := range c.SourcesUsed {
			out.SourcesUsed[i] = copyMap(src)
		}
	}
	return &out
}

// copyMap is shallow below the first level, nested values are shared.
func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
