package prompt

import (
	"strings"
	"testing"

	"github.com/nextmile/chatbot/internal/model"
)

func sampleMatches(n int) []model.ScoredMatch {
	out := make([]model.ScoredMatch, 0, n)
	orgs := []string{"Baidu Inc.", "Apple Inc.", "Michelin", "Acme", "Globex"}
	for i := 0; i < n; i++ {
		out = append(out, model.ScoredMatch{
			Score: 0.9 - float64(i)*0.1,
			Record: model.Record{
				ID:           i,
				Kind:         model.KindWork,
				Organization: orgs[i%len(orgs)],
				Title:        "Engineer",
				Narrative:    "Did things.",
			},
		})
	}
	return out
}

func TestBuildContainsQuery(t *testing.T) {
	query := "what did you do at Baidu?"
	withMatches := Build(query, sampleMatches(2), Options{})
	noMatches := Build(query, nil, Options{})
	for _, p := range []string{withMatches, noMatches} {
		if !strings.Contains(p, "User Question: "+query) {
			t.Fatalf("prompt does not embed the literal query:\n%s", p)
		}
	}
}

func TestBuildContextBlock(t *testing.T) {
	p := Build("question", sampleMatches(2), Options{})
	for _, want := range []string{
		"My Background:",
		"Company/Organization: Baidu Inc.",
		"Company/Organization: Apple Inc.",
		"Position/Project: Engineer",
		"Relevance Score: 0.900",
		"Answer naturally as me:",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "(rank ") {
		t.Fatal("rank annotation must only appear in conversational mode")
	}
	if strings.Contains(p, "Previous Conversation:") {
		t.Fatal("history section must not appear without history")
	}
}

func TestBuildSectionOrder(t *testing.T) {
	history := []model.Turn{
		{Role: model.RoleUser, Text: "first question"},
		{Role: model.RoleAssistant, Text: "first answer"},
	}
	p := Build("second question", sampleMatches(1), Options{History: history, MaxHistoryPairs: 4, MaxContextRecords: 3})

	positions := []int{
		strings.Index(p, "digital avatar"),
		strings.Index(p, "Previous Conversation:"),
		strings.Index(p, "My Background:"),
		strings.Index(p, "User Question:"),
		strings.Index(p, "Instructions:"),
	}
	for i, pos := range positions {
		if pos < 0 {
			t.Fatalf("section %d missing:\n%s", i, p)
		}
		if i > 0 && positions[i-1] >= pos {
			t.Fatalf("sections out of order at %d: %v", i, positions)
		}
	}
	if !strings.Contains(p, "User: first question") || !strings.Contains(p, "Assistant: first answer") {
		t.Fatalf("history turns not rendered:\n%s", p)
	}
	if !strings.Contains(p, "(rank 1)") {
		t.Fatalf("conversational mode must rank context records:\n%s", p)
	}
}

func TestBuildHistoryWindow(t *testing.T) {
	var history []model.Turn
	for i := 0; i < 10; i++ {
		history = append(history,
			model.Turn{Role: model.RoleUser, Text: "old question"},
			model.Turn{Role: model.RoleAssistant, Text: "old answer"},
		)
	}
	history = append(history, model.Turn{Role: model.RoleUser, Text: "newest question"})
	p := Build("q", sampleMatches(1), Options{History: history, MaxHistoryPairs: 2, MaxContextRecords: 3})
	if !strings.Contains(p, "newest question") {
		t.Fatalf("latest turn dropped:\n%s", p)
	}
	if got := strings.Count(p, "old answer"); got > 2 {
		t.Fatalf("history window too wide, %d old turns rendered", got)
	}
}

func TestBuildContextTruncationWithHistory(t *testing.T) {
	history := []model.Turn{{Role: model.RoleUser, Text: "hi"}}
	p := Build("q", sampleMatches(5), Options{History: history, MaxHistoryPairs: 4, MaxContextRecords: 3})
	if got := strings.Count(p, "Company/Organization:"); got != 3 {
		t.Fatalf("expected 3 context records with history, got %d", got)
	}

	// Without history the full match list goes in.
	p = Build("q", sampleMatches(5), Options{MaxContextRecords: 3})
	if got := strings.Count(p, "Company/Organization:"); got != 5 {
		t.Fatalf("expected all 5 context records without history, got %d", got)
	}
}

func TestBuildNoMatch(t *testing.T) {
	p := Build("do you cook?", nil, Options{})
	if !strings.Contains(p, "no matching background") {
		t.Fatalf("no-match template missing guidance:\n%s", p)
	}
	if strings.Contains(p, "My Background:") {
		t.Fatalf("no-match prompt must not carry a context block:\n%s", p)
	}
}

func TestBuildUnknownFields(t *testing.T) {
	matches := []model.ScoredMatch{{Score: 0.5, Record: model.Record{Kind: model.KindWork}}}
	p := Build("q", matches, Options{})
	if got := strings.Count(p, "Unknown"); got != 3 {
		t.Fatalf("expected 3 Unknown placeholders, got %d:\n%s", got, p)
	}
}
