package models

type Answer struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// Selections maps a question id to the chosen answer id. Ids that do not exist
// in the quiz are kept as submitted.
type Selections map[string]string

func (s Selections) Empty() bool {
	return len(s) == 0
}

func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
