package view

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// RSS is an RSS 2.0 document.
type RSS struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel RSSChannel `xml:"channel"`
}

type RSSChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	PubDate     string    `xml:"pubDate,omitempty"`
	Items       []RSSItem `xml:"item"`
}

type RSSItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link,omitempty"`
	Description string `xml:"description"`
	Author      string `xml:"author,omitempty"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate,omitempty"`
}

// RSS renders the feed. baseURL is prepended to item links.
func (v *ResourceFeedView) RSS(baseURL string) RSS {
	res := v.Resource
	ch := RSSChannel{
		Title: res.Name,
		Link:  fmt.Sprintf("%s/v1/resources/%s", baseURL, res.ID),
		Description: fmt.Sprintf("Reservations for %s, available %s (%d minutes), owned by %s",
			res.Name, res.Window, res.DurationMinutes, res.Owner),
		PubDate: res.LastActivityAt.UTC().Format(time.RFC1123Z),
		Items:   make([]RSSItem, 0, len(v.Reservations)),
	}
	for _, r := range v.Reservations {
		ch.Items = append(ch.Items, RSSItem{
			Title:       fmt.Sprintf("%s %s", r.ResourceName, r.Interval),
			Link:        fmt.Sprintf("%s/v1/reservations/%s", baseURL, r.ID),
			Description: strings.TrimSpace(fmt.Sprintf("%d minutes starting at %s. %s", r.DurationMinutes, r.Interval.Start, r.Notes)),
			Author:      r.Owner,
			GUID:        r.ID,
			PubDate:     r.CreatedAt.UTC().Format(time.RFC1123Z),
		})
	}
	return RSS{Version: "2.0", Channel: ch}
}
