package domain

// Option is one answer choice of an item. Correct is only meaningful for quiz forms.
type Option struct {
	ID      string
	Label   string
	Correct bool
}

// Item is the smallest schedulable unit of a room: a question or a survey prompt.
type Item struct {
	ID      string
	Prompt  string
	Options []Option
	Points  int64
}

func (i Item) Option(id string) (Option, bool) {
	for _, o := range i.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// CorrectOptions lists the ids of the options flagged as correct, in form order.
func (i Item) CorrectOptions() []string {
	var ids []string
	for _, o := range i.Options {
		if o.Correct {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// Form is the authored content a room is opened from.
type Form struct {
	ID      string
	Kind    RoomKind
	Title   string
	OwnerID string
	Items   []Item
}
