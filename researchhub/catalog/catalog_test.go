package catalog

import "testing"

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	names := c.Names()
	want := []string{"trending", "sports", "technology"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("position %d: expected %s, got %s", i, n, names[i])
		}
		cat, ok := c.Get(n)
		if !ok || len(cat.SuggestedQueries) != 5 {
			t.Errorf("%s: expected 5 queries, got %+v", n, cat)
		}
	}
	sports, _ := c.Get("sports")
	if sports.SuggestedQueries[1] != "NFL/NBA/MLB/NHL highlights and updates" {
		t.Errorf("unexpected sports query %q", sports.SuggestedQueries[1])
	}
	if _, ok := c.Get("weather"); ok {
		t.Error("weather should not exist")
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	data := []byte("categories:\n  - name: a\n  - name: a\n")
	if _, err := Parse(data); err == nil {
		t.Fatal("expected duplicate error")
	}
}
