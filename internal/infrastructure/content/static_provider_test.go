package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdesk/prepdesk/internal/domain/session"
	"github.com/prepdesk/prepdesk/internal/domain/shared"
)

func TestFetchItems_ReturnsSubjectBank(t *testing.T) {
	p := NewStaticProvider(nil)

	items, err := p.FetchItems(context.Background(), session.Config{
		UserID:    "u1",
		Subject:   session.SubjectMath,
		ItemCount: 10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for _, item := range items {
		assert.NotEmpty(t, item.ID)
		assert.NotEmpty(t, item.Prompt)
	}
}

func TestFetchItems_FiltersByTopic(t *testing.T) {
	p := NewStaticProvider(nil)

	items, err := p.FetchItems(context.Background(), session.Config{
		UserID:    "u1",
		Subject:   session.SubjectMath,
		Topics:    []string{"Arithmetic"},
		ItemCount: 10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for _, item := range items {
		assert.Equal(t, "arithmetic", item.Topic)
	}
}

func TestFetchItems_UnknownSubject(t *testing.T) {
	p := NewStaticProvider(map[session.Subject][]session.Item{})

	_, err := p.FetchItems(context.Background(), session.Config{
		UserID:    "u1",
		Subject:   session.SubjectEnglish,
		ItemCount: 5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFetchItems_CopiesBank(t *testing.T) {
	p := NewStaticProvider(nil)

	first, err := p.FetchItems(context.Background(), session.Config{
		UserID:    "u1",
		Subject:   session.SubjectVocabulary,
		ItemCount: 10,
	})
	require.NoError(t, err)

	first[0].Prompt = "mutated"

	second, err := p.FetchItems(context.Background(), session.Config{
		UserID:    "u1",
		Subject:   session.SubjectVocabulary,
		ItemCount: 10,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second[0].Prompt)
}
