package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"texgallery/internal/assets"
	"texgallery/internal/services"
)

// Entry is the saved state of one asset.
type Entry struct {
	ID                    string `json:"id,omitempty"`
	Folder                string `json:"folder"`
	Filename              string `json:"filename"`
	Type                  string `json:"type"`
	IsModified            bool   `json:"isModified"`
	IsNew                 bool   `json:"isNew"`
	ModifiedContentBase64 string `json:"modifiedContentBase64,omitempty"`
	NewContentBase64      string `json:"newContentBase64,omitempty"`
	MIMEType              string `json:"mimeType,omitempty"`
}

// Document is the portable session payload, serialized as a JSON array.
type Document []Entry

// Serialize captures every modified or replaced asset in registry order.
func Serialize(registry *assets.Registry) Document {
	doc := Document{}
	if registry == nil {
		return doc
	}
	for _, a := range registry.Modified() {
		entry := Entry{
			ID:         a.ID(),
			Folder:     a.Folder,
			Filename:   a.Filename,
			Type:       a.Type.String(),
			IsModified: a.IsModified(),
			IsNew:      a.IsNew(),
		}
		if c := a.Replacement(); a.IsNew() && c != nil {
			entry.NewContentBase64 = base64.StdEncoding.EncodeToString(c.Bytes())
			entry.MIMEType = c.MIME()
		} else if c := a.Modified(); a.IsModified() && c != nil {
			entry.ModifiedContentBase64 = base64.StdEncoding.EncodeToString(c.Bytes())
			entry.MIMEType = c.MIME()
		}
		doc = append(doc, entry)
	}
	return doc
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return services.Wrap(services.ErrEncode, "session", "encode", "write document", err)
	}
	return nil
}

// Decode reads a JSON document. A null document decodes as empty.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "session", "decode", "parse document", err)
	}
	if dec.More() {
		return nil, services.Wrap(services.ErrValidation, "session", "decode", "trailing data after document", nil)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

func (e Entry) label() string {
	if e.Type != "" {
		return fmt.Sprintf("%s/%s/%s", e.Type, e.Folder, e.Filename)
	}
	return e.Folder + "/" + e.Filename
}
