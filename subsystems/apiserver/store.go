package apiserver

import (
	"context"

	"github.com/emoji-connoisseur/connoisseur/database/repository/emote"
)

// RepositoryStore serves emotes from the cached emote repository
type RepositoryStore struct{}

// One returns a single emote by name
func (RepositoryStore) One(ctx context.Context, name string) (emote.Details, error) {
	return emote.One(ctx, name)
}

// All returns every emote
func (RepositoryStore) All(ctx context.Context) ([]emote.Details, error) {
	return emote.All(ctx)
}

// Count returns the amount of emotes
func (RepositoryStore) Count(ctx context.Context) (int64, error) {
	return emote.Count(ctx)
}

// SetDescription updates the description of an emote
func (RepositoryStore) SetDescription(ctx context.Context, name, description string) (emote.Details, error) {
	return emote.SetDescription(ctx, name, description)
}
