package scoring

// GroupingOnly marks a type as a display/grouping construct that carries no
// scoring weight of its own. Subsections embed it: their questions are
// pooled at the section level for averaging, and adding subsection-level
// weighting would be a deliberate contract change, not a refactor.
type GroupingOnly struct{}

// Option is a declared answer choice on a question, as authored in the form
// builder.
type Option struct {
	Label string   `json:"label"`
	Value Response `json:"value"`
}

// Question is a single audit item. Response is nil while unanswered;
// unanswered questions are excluded from every average rather than scored
// as zero.
type Question struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	Options      []Option  `json:"options,omitempty"`
	Response     *Response `json:"response"`
	Observations string    `json:"observations,omitempty"`
	EvidenceURL  string    `json:"evidence_url,omitempty"`
}

// Answered reports whether the question carries a response.
func (q Question) Answered() bool { return q.Response != nil }

// Subsection groups questions for display. It owns its questions
// exclusively; there is no cross-section sharing.
type Subsection struct {
	GroupingOnly `json:"-"`

	ID        string     `json:"subsection"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Section is one top-level block of the questionnaire. Section order is
// display-significant but never score-significant: aggregation is
// order-independent.
type Section struct {
	ID          string       `json:"section"`
	Title       string       `json:"title"`
	Subsections []Subsection `json:"subsections"`
}

// Questions returns every question under the section, pooled across its
// subsections in authored order.
func (s Section) Questions() []Question {
	var qs []Question
	for _, sub := range s.Subsections {
		qs = append(qs, sub.Questions...)
	}
	return qs
}
