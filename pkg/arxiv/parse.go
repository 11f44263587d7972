package arxiv

import (
	"encoding/xml"
	"fmt"
	"strings"
)

type feed struct {
	Entries []entry `xml:"entry"`
}

type entry struct {
	ID              string     `xml:"id"`
	Title           string     `xml:"title"`
	Summary         string     `xml:"summary"`
	Published       string     `xml:"published"`
	Authors         []author   `xml:"author"`
	Links           []link     `xml:"link"`
	Categories      []category `xml:"category"`
	PrimaryCategory category   `xml:"primary_category"`
}

type author struct {
	Name string `xml:"name"`
}

type link struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

type category struct {
	Term string `xml:"term,attr"`
}

// parseFeed decodes an Atom feed into papers, one per entry.
func parseFeed(data []byte) ([]Paper, error) {
	var f feed
	if err := xml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding atom feed: %w", err)
	}

	papers := make([]Paper, 0, len(f.Entries))
	for _, e := range f.Entries {
		papers = append(papers, e.toPaper())
	}

	return papers, nil
}

func (e entry) toPaper() Paper {
	p := Paper{
		ID:            idFromAbsURL(e.ID),
		Title:         normalizeWhitespace(e.Title),
		AbstractText:  normalizeWhitespace(e.Summary),
		PublishedDate: datePart(e.Published),
	}

	names := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	p.Authors = strings.Join(names, ", ")
	if p.Authors == "" {
		p.Authors = "Unknown"
	}

	for _, c := range e.Categories {
		if c.Term != "" {
			p.Categories = append(p.Categories, c.Term)
		}
	}

	main := e.PrimaryCategory.Term
	if main == "" && len(p.Categories) > 0 {
		main = p.Categories[0]
	}
	if main == "" {
		main = "Unknown"
	}
	p.Category = FormatCategory(main)

	for _, l := range e.Links {
		if l.Title == "pdf" && l.Href != "" {
			p.PDFURL = l.Href
			break
		}
	}
	if p.PDFURL == "" {
		p.PDFURL = fmt.Sprintf("https://arxiv.org/pdf/%s.pdf", p.ID)
	}
	p.DownloadURL = p.PDFURL

	return p
}

// idFromAbsURL extracts the bare arXiv id from an abs URL like
// http://arxiv.org/abs/2311.18775v2, stripping the version suffix.
func idFromAbsURL(raw string) string {
	_, id, ok := strings.Cut(raw, "/abs/")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(id, 'v'); i >= 0 {
		id = id[:i]
	}
	return id
}

// normalizeWhitespace trims and collapses runs of whitespace, undoing the
// feed's hard line wrapping.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// datePart truncates an RFC3339 timestamp at the date.
func datePart(published string) string {
	date, _, _ := strings.Cut(published, "T")
	return date
}
