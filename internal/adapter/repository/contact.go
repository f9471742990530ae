package repository

import (
	"fmt"

	"resume-builder/internal/cryptox"
	"resume-builder/internal/model"
)

// EncryptedContactFields lists the contact fields sealed at rest.
var EncryptedContactFields = []string{"full_name", "email", "phone", "linkedin", "website"}

// contactCipher seals personally identifying contact fields. A nil key
// disables encryption; opening still accepts plaintext values.
type contactCipher struct {
	key []byte
}

func (c contactCipher) enabled() bool {
	return len(c.key) > 0
}

func (c contactCipher) fields(ct *model.Contact) []*string {
	return []*string{&ct.FullName, &ct.Email, &ct.Phone, &ct.LinkedIn, &ct.Website}
}

func (c contactCipher) seal(doc model.Document) (model.Document, error) {
	if !c.enabled() {
		return doc, nil
	}
	out := doc
	for _, f := range c.fields(&out.Contact) {
		v, err := cryptox.SealString(*f, c.key)
		if err != nil {
			return doc, fmt.Errorf("seal contact: %w", err)
		}
		*f = v
	}
	return out, nil
}

func (c contactCipher) open(doc model.Document) (model.Document, error) {
	out := doc
	for _, f := range c.fields(&out.Contact) {
		if !cryptox.IsSealed(*f) {
			continue
		}
		if !c.enabled() {
			return doc, fmt.Errorf("contact is encrypted but no field key is configured")
		}
		v, err := cryptox.OpenString(*f, c.key)
		if err != nil {
			return doc, fmt.Errorf("open contact: %w", err)
		}
		*f = v
	}
	return out, nil
}
