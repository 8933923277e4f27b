package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"
)

type formPart struct {
	name        string
	filename    string
	contentType string
	content     []byte
}

// Form is a multipart/form-data payload. Parts are written in the order added.
type Form struct {
	parts []formPart
	err   error
}

func NewForm() *Form {
	return &Form{}
}

// AddField adds a plain text field.
func (f *Form) AddField(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, content: []byte(value)})
	return f
}

// AddFile adds a file part. The content type is guessed from the file extension.
func (f *Form) AddFile(name, filename string, content []byte) *Form {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	f.parts = append(f.parts, formPart{
		name:        name,
		filename:    filename,
		contentType: contentType,
		content:     append([]byte(nil), content...),
	})
	return f
}

// AddJSON adds v encoded as an application/json part, the shape backends expect
// for a structured payload sent alongside files.
func (f *Form) AddJSON(name string, v any) *Form {
	data, err := json.Marshal(v)
	if err != nil {
		if f.err == nil {
			f.err = fmt.Errorf("failed to encode form part %q: %w", name, err)
		}
		return f
	}
	f.parts = append(f.parts, formPart{name: name, contentType: "application/json", content: data})
	return f
}

// Encode renders the form. It returns the body and its Content-Type header value.
func (f *Form) Encode() ([]byte, string, error) {
	if f == nil {
		return nil, "", fmt.Errorf("nil multipart form")
	}
	if f.err != nil {
		return nil, "", f.err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		h := make(textproto.MIMEHeader)
		disposition := fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(p.name))
		if p.filename != "" {
			disposition += fmt.Sprintf(`; filename="%s"`, escapeQuotes(p.filename))
		}
		h.Set("Content-Disposition", disposition)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}

		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form part %q: %w", p.name, err)
		}
		if _, err := pw.Write(p.content); err != nil {
			return nil, "", fmt.Errorf("failed to write form part %q: %w", p.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
