package domain

// RetrievedRecord is one ranked hit from a nearest-neighbour query.
type RetrievedRecord struct {
	ID       string
	Document string
	Metadata map[string]string

	// Distance is the cosine distance to the query; lower is more similar.
	Distance float64
}

// RetrievalResult is ordered by increasing distance and never longer than the requested top-k.
type RetrievalResult struct {
	Query   string
	Records []RetrievedRecord
}

// IsEmpty reports whether nothing was retrieved.
func (r RetrievalResult) IsEmpty() bool {
	return len(r.Records) == 0
}

// Documents returns the record texts in rank order.
func (r RetrievalResult) Documents() []string {
	docs := make([]string, len(r.Records))
	for i, rec := range r.Records {
		docs[i] = rec.Document
	}
	return docs
}
