package memory

import "time"

// Item is one exchange to remember: the text that gets embedded and the
// response stored alongside it as metadata.
type Item struct {
	Query    string
	Response string
}

type Record struct {
	Id        string
	Text      string
	Metadata  map[string]any
	Embedding []float32
	Score     float32
	CreatedAt time.Time
}
