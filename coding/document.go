package coding

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/geomatico/52n-sos-4.0-sub001/errors"
)

// XMLDocument is a lightly-parsed XML payload: the raw bytes plus the
// resolved name of the real root element. Decoders re-parse the raw bytes
// into their own schema types.
type XMLDocument struct {
	Raw  []byte
	Root xml.Name
}

// ParseXMLDocument sniffs the root element of an XML payload. Comment,
// directive and whitespace nodes before the root are skipped, so a document
// starting with a comment still resolves the namespace of its real root.
func ParseXMLDocument(data []byte) (*XMLDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.Wrap(errors.ErrInvalidData, "coding", "ParseXMLDocument", "no root element")
		}
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return &XMLDocument{Raw: data, Root: start.Name}, nil
		}
	}
}

// Namespace returns the namespace URI of the root element.
func (d *XMLDocument) Namespace() string {
	return d.Root.Space
}

// Unmarshal parses the raw document into the given schema value.
func (d *XMLDocument) Unmarshal(v any) error {
	return xml.Unmarshal(d.Raw, v)
}
