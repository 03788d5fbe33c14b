package models

import (
	"html"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/microcosm-cc/bluemonday"
)

// News is a single generated article. Values are never modified after they
// are built.
type News struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// Generator produces one News per call
type Generator func() (News, error)

// Lengths of the generated fields, in characters
const (
	TitleMinLength   = 10
	TitleMaxLength   = 20
	ContentMinLength = 1000
	ContentMaxLength = 10000
)

const loremCharacters = "abcdefghijklmnopqrstuvwxyz0123456789"

var textPolicy = bluemonday.StripTagsPolicy()

// SanitiseText strips all HTML tags from text
func SanitiseText(s string) string {
	return html.UnescapeString(textPolicy.Sanitize(s))
}

// Sanitise returns n with HTML stripped from every field
func (n News) Sanitise() News {
	return News{
		Title:   SanitiseText(n.Title),
		Content: SanitiseText(n.Content),
		Author:  SanitiseText(n.Author),
	}
}

// RandomNews returns a Generator of fake articles. A seed of 0 picks a random
// seed, anything else gives a repeatable sequence.
func RandomNews(seed uint64) Generator {
	f := gofakeit.New(seed)

	return func() (News, error) {
		return News{
			Title:   characters(f, TitleMinLength, TitleMaxLength),
			Content: characters(f, ContentMinLength, ContentMaxLength),
			Author:  f.Name(),
		}, nil
	}
}

// characters returns between min and max (inclusive) random lower case
// alphanumerics
func characters(f *gofakeit.Faker, min int, max int) string {
	n := f.Number(min, max)

	b := make([]byte, n)
	for i := range b {
		b[i] = loremCharacters[f.Number(0, len(loremCharacters)-1)]
	}
	return string(b)
}
