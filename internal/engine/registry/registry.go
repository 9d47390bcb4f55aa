// Package registry resolves language identifiers to language specs.
package registry

import (
	"context"

	"arbiter/internal/engine/profile"
	appErr "arbiter/pkg/errors"
)

// LanguageSpecRepository loads language specifications.
type LanguageSpecRepository interface {
	GetLanguageSpec(ctx context.Context, id string) (profile.LanguageSpec, error)
	ListLanguages(ctx context.Context) []profile.LanguageSpec
}

// LocalRepository serves language specs from memory. It is built once
// at startup and safely shared across concurrent requests.
type LocalRepository struct {
	languages map[string]profile.LanguageSpec
	order     []string
}

// NewLocalRepository creates a repository from a spec list. Later
// entries override earlier ones with the same ID, so config-provided
// specs can replace builtin defaults.
func NewLocalRepository(languages []profile.LanguageSpec) *LocalRepository {
	langMap := make(map[string]profile.LanguageSpec)
	var order []string
	for _, lang := range languages {
		if lang.ID == "" {
			continue
		}
		if _, seen := langMap[lang.ID]; !seen {
			order = append(order, lang.ID)
		}
		langMap[lang.ID] = lang
	}
	return &LocalRepository{languages: langMap, order: order}
}

// GetLanguageSpec returns a language spec. An unknown id is a client
// error, reported distinctly from execution failures.
func (r *LocalRepository) GetLanguageSpec(ctx context.Context, id string) (profile.LanguageSpec, error) {
	if id == "" {
		return profile.LanguageSpec{}, appErr.ValidationError("language_id", "required")
	}
	lang, ok := r.languages[id]
	if !ok {
		return profile.LanguageSpec{}, appErr.Newf(appErr.LanguageNotSupported, "language not supported: %s", id)
	}
	return lang, nil
}

// ListLanguages returns all registered specs in registration order.
func (r *LocalRepository) ListLanguages(ctx context.Context) []profile.LanguageSpec {
	out := make([]profile.LanguageSpec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.languages[id])
	}
	return out
}
