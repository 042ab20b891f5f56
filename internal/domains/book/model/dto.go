package model

// BookPayload is the POST/PUT body.
// IDAuthor is re-read on every write: absent or -1 means no author.
type BookPayload struct {
	Title     *string `json:"title"`
	CoverText *string `json:"coverText"`
	IDAuthor  *int64  `json:"idAuthor"`
}

func (p BookPayload) ApplyTo(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.CoverText != nil {
		b.CoverText = *p.CoverText
	}
}

// AuthorRef returns the requested author id, or NoAuthor.
func (p BookPayload) AuthorRef() int64 {
	if p.IDAuthor == nil || *p.IDAuthor <= 0 {
		return NoAuthor
	}
	return *p.IDAuthor
}
