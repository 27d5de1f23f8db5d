package generator

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/vmunix/anistrm/internal/catalog"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

type uniqueID struct {
	Type    string `xml:"type,attr"`
	Default bool   `xml:"default,attr"`
	Value   string `xml:",chardata"`
}

type tvShowNFO struct {
	XMLName       xml.Name  `xml:"tvshow"`
	Title         string    `xml:"title"`
	OriginalTitle string    `xml:"originaltitle,omitempty"`
	Plot          string    `xml:"plot,omitempty"`
	Outline       string    `xml:"outline,omitempty"`
	UniqueID      *uniqueID `xml:"uniqueid,omitempty"`
}

type seasonNFO struct {
	XMLName      xml.Name `xml:"season"`
	Title        string   `xml:"title"`
	SeasonNumber int      `xml:"seasonnumber"`
	Plot         string   `xml:"plot,omitempty"`
}

type episodeNFO struct {
	XMLName       xml.Name `xml:"episodedetails"`
	Title         string   `xml:"title"`
	OriginalTitle string   `xml:"originaltitle,omitempty"`
	ShowTitle     string   `xml:"showtitle"`
	Season        int      `xml:"season"`
	Episode       int      `xml:"episode"`
}

// titleNames returns the display title and the original title, the latter
// empty when it would repeat the display title.
func titleNames(t catalog.Title) (string, string) {
	display := t.DisplayName()
	if display == "" {
		display = ShowName(t)
	}
	original := t.Names.En
	if original == display {
		original = ""
	}
	return display, original
}

func renderShowNFO(t catalog.Title) ([]byte, error) {
	display, original := titleNames(t)
	return marshalNFO(tvShowNFO{
		Title:         display,
		OriginalTitle: original,
		Plot:          t.Description,
		Outline:       t.Description,
		UniqueID:      &uniqueID{Type: "anilibria", Default: true, Value: strconv.Itoa(t.ID)},
	})
}

func renderSeasonNFO(t catalog.Title) ([]byte, error) {
	display, _ := titleNames(t)
	season := t.SeasonNumber()
	return marshalNFO(seasonNFO{
		Title:        fmt.Sprintf("%s - %s", display, SeasonDir(season)),
		SeasonNumber: season,
		Plot:         t.Description,
	})
}

func renderEpisodeNFO(t catalog.Title, ep catalog.Episode, number int) ([]byte, error) {
	display, original := titleNames(t)
	name := ep.Name
	if name == "" {
		name = fmt.Sprintf("Episode %d", number)
	}
	return marshalNFO(episodeNFO{
		Title:         name,
		OriginalTitle: original,
		ShowTitle:     display,
		Season:        t.SeasonNumber(),
		Episode:       number,
	})
}

func marshalNFO(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal nfo: %w", err)
	}
	out := make([]byte, 0, len(xmlHeader)+len(body)+1)
	out = append(out, xmlHeader...)
	out = append(out, body...)
	return append(out, '\n'), nil
}
