package index

// Posting associates one document with the number of times a term occurs
// in it. Frequency is always at least 1.
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"frequency"`
}

type PostingList []Posting

// DocIDs returns the document IDs of the list in order.
func (pl PostingList) DocIDs() []string {
	ids := make([]string, 0, len(pl))
	for _, p := range pl {
		ids = append(ids, p.DocID)
	}
	return ids
}
