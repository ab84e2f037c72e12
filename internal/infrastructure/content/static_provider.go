// Package content provides item sources for practice sessions. The static
// provider serves a built-in bank, useful for development and as a fallback
// when no content service is configured.
package content

import (
	"context"
	"strings"

	"github.com/prepdesk/prepdesk/internal/application/practice"
	"github.com/prepdesk/prepdesk/internal/domain/session"
	"github.com/prepdesk/prepdesk/internal/domain/shared"
)

// StaticProvider serves items from an in-memory bank keyed by subject.
// It implements practice.ItemProvider.
type StaticProvider struct {
	banks map[session.Subject][]session.Item
}

var _ practice.ItemProvider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider over the given banks. A nil map
// yields the built-in demo bank.
func NewStaticProvider(banks map[session.Subject][]session.Item) *StaticProvider {
	if banks == nil {
		banks = demoBank()
	}
	return &StaticProvider{banks: banks}
}

// FetchItems returns the bank for the requested subject, filtered by topic
// when the configuration names any.
func (p *StaticProvider) FetchItems(ctx context.Context, cfg session.Config) ([]session.Item, error) {
	bank, ok := p.banks[cfg.Subject]
	if !ok {
		return nil, shared.NewDomainError("content", "FetchItems", shared.ErrNotFound,
			"no items for subject "+string(cfg.Subject))
	}

	if len(cfg.Topics) == 0 {
		out := make([]session.Item, len(bank))
		copy(out, bank)
		return out, nil
	}

	topics := make(map[string]bool, len(cfg.Topics))
	for _, t := range cfg.Topics {
		topics[strings.ToLower(t)] = true
	}

	var out []session.Item
	for _, item := range bank {
		if topics[strings.ToLower(item.Topic)] {
			out = append(out, item)
		}
	}
	return out, nil
}

func demoBank() map[session.Subject][]session.Item {
	return map[session.Subject][]session.Item{
		session.SubjectMath: {
			{ID: "math-001", Kind: session.KindNumeric, Topic: "arithmetic", Prompt: "What is 17 + 25?"},
			{ID: "math-002", Kind: session.KindNumeric, Topic: "arithmetic", Prompt: "What is 12 × 8?"},
			{ID: "math-003", Kind: session.KindNumeric, Topic: "algebra", Prompt: "Solve for x: 3x - 7 = 14", Hints: []string{"Add 7 to both sides"}},
			{ID: "math-004", Kind: session.KindChoice, Topic: "geometry", Prompt: "How many degrees in a triangle's angles?", Choices: []string{"90", "180", "270", "360"}},
		},
		session.SubjectEnglish: {
			{ID: "eng-001", Kind: session.KindChoice, Topic: "grammar", Prompt: "Choose the correct form: She ___ to school every day.", Choices: []string{"go", "goes", "going", "gone"}},
			{ID: "eng-002", Kind: session.KindText, Topic: "writing", Prompt: "Rewrite in passive voice: The committee approved the proposal."},
			{ID: "eng-003", Kind: session.KindChoice, Topic: "grammar", Prompt: "Pick the synonym of 'rapid'.", Choices: []string{"slow", "swift", "late", "calm"}},
		},
		session.SubjectVocabulary: {
			{ID: "voc-001", Kind: session.KindText, Topic: "general", Prompt: "Define: ubiquitous"},
			{ID: "voc-002", Kind: session.KindText, Topic: "general", Prompt: "Define: ephemeral"},
			{ID: "voc-003", Kind: session.KindText, Topic: "general", Prompt: "Define: pragmatic"},
			{ID: "voc-004", Kind: session.KindText, Topic: "academic", Prompt: "Define: hypothesis"},
		},
	}
}
