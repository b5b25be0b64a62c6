// Package prompt assembles the instruction text sent to the generation
// backend. Section order is part of the contract: persona, then
// conversation history, then retrieved context, then the question, then
// the instruction block.
package prompt

import (
	"fmt"
	"strings"

	"github.com/nextmile/chatbot/internal/model"
)

const persona = "You are my digital avatar, speaking as if you were me personally. " +
	"Answer user questions in a casual, conversational way as if we're having a friendly chat."

// Options controls prompt assembly for one query.
type Options struct {
	// History, when non-empty, switches the builder into conversational
	// mode: recent turns are prepended and the context block is capped
	// at MaxContextRecords.
	History           []model.Turn
	MaxHistoryPairs   int
	MaxContextRecords int
}

// Build renders the full prompt for a query and its retrieved matches.
// With no matches it produces the fixed no-background template, which
// always embeds the literal query.
func Build(query string, matches []model.ScoredMatch, opts Options) string {
	if len(matches) == 0 {
		return buildNoMatch(query)
	}

	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n")

	conversational := len(opts.History) > 0
	if conversational {
		writeHistory(&b, opts.History, opts.MaxHistoryPairs)
		limit := opts.MaxContextRecords
		if limit <= 0 {
			limit = 3
		}
		if len(matches) > limit {
			matches = matches[:limit]
		}
	}

	b.WriteString("My Background:\n")
	for i, m := range matches {
		rec := m.Record
		fmt.Fprintf(&b, "\nType: %s\n", orUnknown(string(rec.Kind)))
		fmt.Fprintf(&b, "Company/Organization: %s\n", orUnknown(rec.Organization))
		fmt.Fprintf(&b, "Position/Project: %s\n", orUnknown(rec.Title))
		fmt.Fprintf(&b, "Details: %s\n", orUnknown(rec.Narrative))
		if conversational {
			fmt.Fprintf(&b, "Relevance Score: %.3f (rank %d)\n", m.Score, i+1)
		} else {
			fmt.Fprintf(&b, "Relevance Score: %.3f\n", m.Score)
		}
		b.WriteString("---\n")
	}

	fmt.Fprintf(&b, "\nUser Question: %s\n\n", query)

	b.WriteString(`Instructions:
1. Answer as "me" - use first person (I did this, I worked on, I have experience with)
2. Keep responses short and conversational (2-4 sentences max)
3. Show technical competence without going into excessive detail
4. Be friendly and approachable, like chatting with a colleague
5. Only use the background provided above - don't invent experience I don't have
6. If you don't have enough info, say so naturally ("I don't think I've worked on that" or "That's not something I have experience with")
7. Answer in English
8. Don't be overly formal - sound human and relatable
9. If appropriate, end with a friendly follow-up like "Feel free to ask more!" or "Anything else you'd like to know?"

Answer naturally as me:
`)
	return b.String()
}

func buildNoMatch(query string) string {
	var b strings.Builder
	b.WriteString("You are my digital avatar, answering as if you were me personally.\n\n")
	fmt.Fprintf(&b, "User Question: %s\n\n", query)
	b.WriteString("I don't think I have relevant experience in that area based on what's in my background. ")
	b.WriteString("Tell the user plainly that no matching background exists and invite them to ask about other things I've worked on.\n\n")
	b.WriteString("Keep it conversational and answer in English.\n")
	return b.String()
}

func writeHistory(b *strings.Builder, history []model.Turn, maxPairs int) {
	if maxPairs <= 0 {
		maxPairs = 4
	}
	maxTurns := maxPairs * 2
	if len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}
	b.WriteString("Previous Conversation:\n")
	for _, turn := range history {
		label := "User"
		if turn.Role == model.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(b, "%s: %s\n", label, turn.Text)
	}
	b.WriteString("\n")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
