// Package catalog fetches the public-domain poem collection the visualizations are
// drawn from.
package catalog

// Book is a public-domain book and the poems of its table of contents.
type Book struct {
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	PublicDomain bool   `json:"public_domain"`
	JSONURL      string `json:"json_url"`
	Poems        []Poem `json:"poems"`
}

// Poem is one document of the collection. Text is plain text with markup removed.
type Poem struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	BookSlug  string `json:"bookSlug"`
	BookTitle string `json:"bookTitle"`
	SourceURL string `json:"sourceUrl"`
	JSONURL   string `json:"jsonUrl"`
	Text      string `json:"text"`
}

// Flatten lists every poem across books in book order. Poems without a slug cannot
// be addressed and are dropped.
func Flatten(books []Book) []Poem {
	poems := []Poem{}
	for _, book := range books {
		for _, poem := range book.Poems {
			if poem.Slug == "" {
				continue
			}
			poem.BookSlug = book.Slug
			poem.BookTitle = book.Title
			poems = append(poems, poem)
		}
	}
	return poems
}
