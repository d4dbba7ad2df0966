// Package labels resolves display labels for tag emojis. A user override
// wins over the built-in catalog; unknown emojis have no label and callers
// show the emoji itself.
package labels

import "github.com/dmitrijs2005/urgekeeper/internal/client/models"

// defaultCatalog is the built-in tag set, in display order.
var defaultCatalog = []models.Tag{
	{Emoji: "🚬", Label: "Smoking"},
	{Emoji: "🍺", Label: "Alcohol"},
	{Emoji: "🍬", Label: "Sugar"},
	{Emoji: "📱", Label: "Phone"},
	{Emoji: "🎮", Label: "Gaming"},
	{Emoji: "☕", Label: "Caffeine"},
	{Emoji: "🍔", Label: "Junk food"},
	{Emoji: "💸", Label: "Shopping"},
	{Emoji: "😴", Label: "Tired"},
	{Emoji: "😤", Label: "Stress"},
	{Emoji: "🥱", Label: "Boredom"},
	{Emoji: "🌿", Label: "Cannabis"},
}

var defaultLabels = func() map[string]string {
	m := make(map[string]string, len(defaultCatalog))
	for _, t := range defaultCatalog {
		m[t.Emoji] = t.Label
	}
	return m
}()

// DefaultCatalog returns a copy of the built-in tags.
func DefaultCatalog() []models.Tag {
	out := make([]models.Tag, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

// DefaultLabel returns the built-in label of emoji.
func DefaultLabel(emoji string) (string, bool) {
	l, ok := defaultLabels[emoji]
	return l, ok
}
