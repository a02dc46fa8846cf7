package dblp

import "encoding/json"

// Hit is one candidate publication from a DBLP search.
type Hit struct {
	Info HitInfo `json:"info"`
}

// HitInfo carries the bibliographic fields of a candidate.
type HitInfo struct {
	Title   string     `json:"title"`
	Year    string     `json:"year"`
	Venue   string     `json:"venue"`
	URL     string     `json:"url"`
	Volume  string     `json:"volume"`
	DOI     string     `json:"doi"`
	Authors AuthorList `json:"authors"`
}

// AuthorList wraps DBLP's authors object. The API returns "author" as an
// array for multi-author papers but as a single object for one author, so
// decoding has to accept both shapes.
type AuthorList struct {
	Author []Author `json:"author"`
}

// Author is one author name.
type Author struct {
	Text string `json:"text"`
}

// UnmarshalJSON accepts both a single author object and an array.
func (a *AuthorList) UnmarshalJSON(data []byte) error {
	var multi struct {
		Author []Author `json:"author"`
	}
	if err := json.Unmarshal(data, &multi); err == nil {
		a.Author = multi.Author
		return nil
	}

	var single struct {
		Author Author `json:"author"`
	}
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	a.Author = []Author{single.Author}
	return nil
}

// Names returns the author names as plain strings.
func (a AuthorList) Names() []string {
	names := make([]string, 0, len(a.Author))
	for _, author := range a.Author {
		names = append(names, author.Text)
	}
	return names
}

// searchResponse is the envelope of the publication search API. The total
// hit count is a string in the payload.
type searchResponse struct {
	Result struct {
		Hits struct {
			Total string `json:"@total"`
			Hit   []Hit  `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}
