package probe

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"buckettool/pkg/net"
)

// Success reports a 2xx status.
func Success(ex *net.Exchange) bool {
	return ex.Status >= 200 && ex.Status < 300
}

// HasElements matches when the body is XML containing every named element.
// Names are compared on local name only, so namespaced documents match too.
func HasElements(names ...string) Predicate {
	return func(ex *net.Exchange) bool {
		found := scanElements(ex.Body)
		for _, n := range names {
			if !found[n] {
				return false
			}
		}
		return true
	}
}

// ErrorCode matches an error document whose <Code> element equals code.
func ErrorCode(code string) Predicate {
	return func(ex *net.Exchange) bool {
		return xmlErrorCode(ex.Body) == code
	}
}

// All combines predicates; every one must hold.
func All(preds ...Predicate) Predicate {
	return func(ex *net.Exchange) bool {
		for _, p := range preds {
			if !p(ex) {
				return false
			}
		}
		return true
	}
}

// NoSuchBucket flags a bucket name that is not registered and could be claimed.
var NoSuchBucket = ErrorCode("NoSuchBucket")

// scanElements collects the local names of all start elements. Tokenizing
// stops at the first syntax error; elements seen before it still count.
func scanElements(body []byte) map[string]bool {
	found := map[string]bool{}
	dec := newDecoder(body)
	for {
		tok, err := dec.Token()
		if err != nil {
			return found
		}
		if se, ok := tok.(xml.StartElement); ok {
			found[se.Name.Local] = true
		}
	}
}

func xmlErrorCode(body []byte) string {
	dec := newDecoder(body)
	inCode := false
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "Code" {
				inCode = true
				text.Reset()
			}
		case xml.CharData:
			if inCode {
				text.Write(t)
			}
		case xml.EndElement:
			if inCode && t.Name.Local == "Code" {
				return strings.TrimSpace(text.String())
			}
		}
	}
}

func newDecoder(body []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return dec
}
