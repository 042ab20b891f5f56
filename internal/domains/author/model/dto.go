package model

// AuthorPayload is the POST/PUT body. Nil fields leave the target untouched.
type AuthorPayload struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

func (p AuthorPayload) ApplyTo(a *Author) {
	if p.FirstName != nil {
		a.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		a.LastName = *p.LastName
	}
}
