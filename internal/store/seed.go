package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// SeedSample is a built-in sample without its audio location.
type SeedSample struct {
	Language string
	Text     string
	Filename string
}

// Seeds are the samples every new store starts with.
var Seeds = []SeedSample{
	{
		Language: "english",
		Text: `In the ancient land of Eldoria, where skies shimmered and forests, whispered secrets to the wind, lived a dragon named Zephyros. [sarcastically] Not the "burn it all down" kind... [giggles] but he was gentle, wise, with eyes like old stars. [whispers] Even the birds fell silent when he passed.`,
		Filename: "english_sample.mp3",
	},
	{
		Language: "arabic",
		Text: `في أرض إلدوريا القديمة، حيث كانت السماء تتلألأ والغابات تهمس بالأسرار للريح، عاش تنين يُدعى زيفيروس. [sarcastically] ليس من نوع "يحرق كل شيء"... [giggles] لكنه كان لطيفًا وحكيمًا، وعيناه تشبهان النجوم القديمة. [whispers] حتى الطيور كانت تصمت عندما يمر.`,
		Filename: "arabic_sample.mp3",
	},
}

// SeedRecords returns Seeds with audio served from publicURL/static.
func SeedRecords(publicURL string) []Record {
	base := strings.TrimRight(publicURL, "/")
	out := make([]Record, 0, len(Seeds))
	for _, s := range Seeds {
		out = append(out, Record{
			Language: s.Language,
			Text:     s.Text,
			AudioURL: base + "/static/" + s.Filename,
			Filename: s.Filename,
		})
	}
	return out
}

// Seed inserts the seed records when s is empty and reports whether it did.
func Seed(ctx context.Context, s Store, publicURL string) (bool, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count samples: %w", err)
	}
	if n > 0 {
		log.Debug("store already has samples", "count", n)
		return false, nil
	}

	for _, r := range SeedRecords(publicURL) {
		if _, err := s.Create(ctx, r); err != nil {
			return false, fmt.Errorf("seed %s: %w", r.Language, err)
		}
	}
	log.Info("seeded sample store", "count", len(Seeds))
	return true, nil
}
