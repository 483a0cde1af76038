package place

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Place is a map place whose popular times are scraped.
type Place struct {
	PlaceID   string  `json:"place_id"`
	PlaceName string  `json:"place_name"`
	PlaceURL  string  `json:"place_url"`
	PlaceLat  float64 `json:"place_lat"`
	PlaceLon  float64 `json:"place_lng"`

	// HasCoordinates is false when the URL carried no position.
	HasCoordinates bool `json:"has_coordinates"`
}

var (
	featureIDRegex = regexp.MustCompile(`!1s(0x[0-9a-fA-F]+:0x[0-9a-fA-F]+)`)
	pinRegex       = regexp.MustCompile(`!3d(-?\d+(?:\.\d+)?)!4d(-?\d+(?:\.\d+)?)`)
	viewportRegex  = regexp.MustCompile(`/@(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)`)
)

// ParsePlaceURL derives a Place from a Google Maps place URL. The id is the
// map feature id when present, otherwise a hash of the URL without its query.
// Coordinates come from the place pin, falling back to the viewport centre.
func ParsePlaceURL(raw string) (Place, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Place{}, fmt.Errorf("invalid place url: %w", err)
	}
	if u.Host == "" {
		return Place{}, errors.New("invalid place url: missing host")
	}

	p := Place{
		PlaceURL:  raw,
		PlaceName: nameFromPath(u.EscapedPath()),
	}

	if m := featureIDRegex.FindStringSubmatch(raw); m != nil {
		p.PlaceID = strings.ToLower(m[1])
	} else {
		sum := sha1.Sum([]byte(u.Host + u.Path))
		p.PlaceID = hex.EncodeToString(sum[:8])
	}

	m := pinRegex.FindStringSubmatch(raw)
	if m == nil {
		m = viewportRegex.FindStringSubmatch(raw)
	}
	if m != nil {
		lat, latErr := strconv.ParseFloat(m[1], 64)
		lon, lonErr := strconv.ParseFloat(m[2], 64)
		if latErr == nil && lonErr == nil {
			p.PlaceLat, p.PlaceLon = lat, lon
			p.HasCoordinates = true
		}
	}
	return p, nil
}

// nameFromPath reads the segment after /place/, e.g. "Domino's+Pizza".
func nameFromPath(escaped string) string {
	segs := strings.Split(escaped, "/")
	for i, s := range segs {
		if s != "place" || i+1 >= len(segs) {
			continue
		}
		name := strings.ReplaceAll(segs[i+1], "+", " ")
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
		return name
	}
	return ""
}
