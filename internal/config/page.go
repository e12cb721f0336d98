package config

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"

	"github.com/hydrostack/hydro-go/internal/errors"
	"github.com/hydrostack/hydro-go/pkg/dom"
)

// MetaName is the name of the meta tag carrying page configuration.
const MetaName = "hydro-config"

// Antiforgery is the header pair sent with every Hydro request.
type Antiforgery struct {
	HeaderName string `json:"HeaderName"`
	Token      string `json:"Token"`
}

// Valid reports whether both the header name and the token are set.
func (a *Antiforgery) Valid() bool {
	return a != nil && a.HeaderName != "" && a.Token != ""
}

// Page is the configuration published by the server in the page.
type Page struct {
	Antiforgery *Antiforgery `json:"Antiforgery,omitempty"`
}

// ParsePage decodes the content of the hydro-config meta tag.
// Empty content yields an empty Page.
func ParsePage(content string) (Page, error) {
	var p Page
	if strings.TrimSpace(content) == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return Page{}, errors.New("H030").Wrap(err)
	}
	return p, nil
}

// PageFrom reads page configuration from a parsed document. A document
// without the meta tag yields an empty Page.
func PageFrom(root *html.Node) (Page, error) {
	meta, err := dom.Query(root, `meta[name="`+MetaName+`"]`)
	if err != nil || meta == nil {
		return Page{}, err
	}
	return ParsePage(dom.AttrOr(meta, "content", ""))
}
