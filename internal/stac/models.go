package stac

import (
	"fmt"

	"github.com/paulmach/orb"
)

// SearchRequest is the body of a POST /search against a STAC API.
type SearchRequest struct {
	Collections []string   `json:"collections"`
	Bbox        [4]float64 `json:"bbox"`
	Datetime    string     `json:"datetime,omitempty"`
	Limit       int        `json:"limit,omitempty"`
}

// NewSearchRequest builds a search for one collection over an orb bound and
// an ISO-8601 interval like "2024-04-01/2025-04-30".
func NewSearchRequest(collection string, bounds orb.Bound, datetime string) SearchRequest {
	return SearchRequest{
		Collections: []string{collection},
		Bbox: [4]float64{
			bounds.Min[0], bounds.Min[1],
			bounds.Max[0], bounds.Max[1],
		},
		Datetime: datetime,
		Limit:    250,
	}
}

// Asset is one downloadable file belonging to an item, typically a single
// spectral band as a cloud-optimized GeoTIFF.
type Asset struct {
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// Item is one catalog entry (a satellite scene).
type Item struct {
	ID         string                 `json:"id"`
	Collection string                 `json:"collection,omitempty"`
	Properties map[string]interface{} `json:"properties"`
	Assets     map[string]Asset       `json:"assets"`
}

// CloudCover returns the eo:cloud_cover property, or +Inf-like sentinel 101
// when the item does not carry one so it never wins a minimum selection.
func (it Item) CloudCover() float64 {
	v, ok := it.Properties["eo:cloud_cover"]
	if !ok {
		return 101
	}
	f, ok := v.(float64)
	if !ok {
		return 101
	}
	return f
}

// AssetHref returns the href of a named asset, e.g. "B04".
func (it Item) AssetHref(name string) (string, error) {
	asset, ok := it.Assets[name]
	if !ok {
		return "", fmt.Errorf("item %s has no asset %q", it.ID, name)
	}
	return asset.Href, nil
}

// Link is a STAC hypermedia link.
type Link struct {
	Rel    string      `json:"rel"`
	Href   string      `json:"href"`
	Method string      `json:"method,omitempty"`
	Body   interface{} `json:"body,omitempty"`
}

// ItemCollection is the FeatureCollection returned by a search.
type ItemCollection struct {
	Type     string `json:"type"`
	Features []Item `json:"features"`
	Links    []Link `json:"links,omitempty"`
}

// NextLink returns the pagination link for the following page, if any.
func (ic ItemCollection) NextLink() (Link, bool) {
	for _, l := range ic.Links {
		if l.Rel == "next" {
			return l, true
		}
	}
	return Link{}, false
}
