package types

import (
	"strings"
	"testing"
	"time"
)

func TestSummaryWithoutMessages(t *testing.T) {
	c := Conversation{ID: "c1", Title: "Empty", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s := c.Summary()
	if s.MessageCount != 0 {
		t.Errorf("expected 0 messages, got %d", s.MessageCount)
	}
	if s.LastMessagePreview != nil {
		t.Errorf("expected nil preview, got %q", *s.LastMessagePreview)
	}
	if s.Tags == nil {
		t.Error("expected empty tags slice, got nil")
	}
}

func TestSummaryPreviewUsesLastMessage(t *testing.T) {
	long := strings.Repeat("é", 150)
	c := Conversation{Messages: []Message{
		{ID: "1", Role: RoleHuman, Content: "first"},
		{ID: "2", Role: RoleAI, Content: long},
	}}
	s := c.Summary()
	if s.MessageCount != 2 {
		t.Fatalf("expected 2 messages, got %d", s.MessageCount)
	}
	want := strings.Repeat("é", 100) + "..."
	if *s.LastMessagePreview != want {
		t.Errorf("unexpected preview %q", *s.LastMessagePreview)
	}
}

func TestPreviewShortContent(t *testing.T) {
	if got := Preview("hi"); got != "hi..." {
		t.Errorf("got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	c := Conversation{Messages: []Message{{ID: "1"}}}
	c.Normalize()
	if c.Tags == nil || c.SourcesUsed == nil || c.Messages[0].Metadata == nil {
		t.Errorf("expected empty collections after Normalize: %+v", c)
	}
}

func TestPublicHidesPassword(t *testing.T) {
	u := User{ID: "u1", Username: "a", HashedPassword: "secret"}
	p := u.Public()
	if p.Preferences == nil {
		t.Error("expected empty preferences map")
	}
	if p.ID != "u1" || p.Username != "a" {
		t.Errorf("unexpected public view %+v", p)
	}
}
