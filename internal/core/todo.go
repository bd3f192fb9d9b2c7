package core

// Todo list format:
//
//	Assignee: Rainer
//	Todos:
//	* Shopping
//	* Prepare lecture
//	---
//	Assignee: Karin
//	* Practice the piano
//
// Lines are trimmed. "Todos:" is optional, "---" closes a block. The
// first "Todos:" must not come before the first "Assignee:".

const (
	todoAssigneeKey  = "Assignee"
	todoSectionMark  = "Todos:"
	blockSeparator   = "---"
	todoDetailPrefix = "*"
)

var todoGrammar = Grammar{
	HeaderKeys:   []string{todoAssigneeKey},
	Markers:      []string{todoSectionMark, blockSeparator},
	DetailPrefix: todoDetailPrefix,
	TrimLines:    true,
}

// TodoParser parses todo lists. It has no reference entities.
type TodoParser struct{}

type todoState struct {
	assignee   string
	open       bool
	headerLine int
	items      int
}

// close ends the current block; an assignee without items is an error.
func (s *todoState) close() error {
	if s.open && s.items == 0 {
		return newError(EmptyTodoSection, s.headerLine)
	}
	*s = todoState{}
	return nil
}

// Parse implements Parser.
func (TodoParser) Parse(content string, _ References) ([]*TodoItem, error) {
	tokens, err := Tokenize(content, todoGrammar)
	if err != nil {
		return nil, err
	}
	if at, before := appearsBefore(content, todoSectionMark, todoAssigneeKey+":"); before {
		return nil, newError(TodosSectionBeforeAssignee, at)
	}

	var (
		st    todoState
		items []*TodoItem
	)

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenHeader:
			if err := st.close(); err != nil {
				return nil, err
			}
			if tooLong(tok.Value, MaxAssigneeLen) {
				return nil, newError(AssigneeTooLong, tok.Line)
			}
			st = todoState{assignee: tok.Value, open: true, headerLine: tok.Line}

		case TokenMarker:
			if tok.Text == blockSeparator {
				if err := st.close(); err != nil {
					return nil, err
				}
			}

		case TokenDetail:
			if !st.open {
				return nil, newError(MissingAssignee, tok.Line)
			}
			title := tok.Fields[0]
			if title == "" {
				return nil, newError(EmptyField, tok.Line)
			}
			if tooLong(title, MaxTitleLen) {
				return nil, newError(TitleTooLong, tok.Line)
			}
			items = append(items, &TodoItem{Title: title, Assignee: st.assignee})
			st.items++
		}
	}

	if err := st.close(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, newError(EmptyTodoSection, 0)
	}
	return items, nil
}
