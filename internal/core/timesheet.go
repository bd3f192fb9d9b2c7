package core

import (
	"strconv"
	"strings"
	"time"
)

// Timesheet format:
//
//	EMP-ID: 12345
//	EMP-NAME: Jane Doe
//	TIMESHEETS: 2024-01-15
//	09:00;17:00;"Worked on feature";PROJ1
//
// One employee per file, any number of dated sections. Lines are not
// trimmed so stray whitespace is reported.

const (
	employeeIDKey   = "EMP-ID"
	employeeNameKey = "EMP-NAME"
	timesheetsKey   = "TIMESHEETS"
	entryDelimiter  = ";"
	entryFields     = 4
	dateLayout      = "2006-01-02"
)

var timesheetGrammar = Grammar{
	HeaderKeys: []string{employeeIDKey, employeeNameKey, timesheetsKey},
	Delimiter:  entryDelimiter,
}

// TimesheetParser parses an employee timesheet and links the entries to
// existing employees and projects.
type TimesheetParser struct{}

type timesheetState struct {
	employeeID string
	name       string
	haveID     bool
	haveName   bool

	date           time.Time
	inSection      bool
	sectionLine    int
	sectionEntries int
}

func (s *timesheetState) requireEmployee(line int) error {
	if !s.haveID {
		return newError(MissingEmployeeId, line)
	}
	if !s.haveName {
		return newError(MissingEmployeeName, line)
	}
	return nil
}

func (s *timesheetState) closeSection() error {
	if s.inSection && s.sectionEntries == 0 {
		return newError(EmptyTimesheetSection, s.sectionLine)
	}
	return nil
}

// Parse implements Parser.
func (TimesheetParser) Parse(content string, refs References) ([]*TimeEntry, error) {
	tokens, err := Tokenize(content, timesheetGrammar)
	if err != nil {
		return nil, err
	}

	sectionAt := firstLine(content, timesheetsKey)
	if sectionAt == 0 {
		return nil, newError(MissingTimesheetSection, 0)
	}
	if employeeAt := firstLine(content, employeeIDKey+":"); employeeAt > 0 && sectionAt < employeeAt {
		return nil, newError(TimesheetSectionBeforeEmployeeData, sectionAt)
	}

	var (
		st        timesheetState
		entries   []*TimeEntry
		employees = newEmployeeResolver(refs.Employees)
		projects  = newProjectResolver(refs.Projects)
	)

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenHeader:
			if err := st.header(tok); err != nil {
				return nil, err
			}

		case TokenDetail:
			if err := st.requireEmployee(tok.Line); err != nil {
				return nil, err
			}
			if !st.inSection {
				return nil, newError(MissingTimesheetSection, tok.Line)
			}

			e, err := parseTimeEntry(tok)
			if err != nil {
				return nil, err
			}

			name := st.name
			e.Date = st.date
			e.Employee = employees.Resolve(st.employeeID, func(emp *Employee) { emp.Name = name })
			e.Project = projects.Resolve(e.Project.Code, nil)

			entries = append(entries, e)
			st.sectionEntries++
		}
	}

	if err := st.closeSection(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *timesheetState) header(tok Token) error {
	switch tok.Key {
	case employeeIDKey:
		if s.haveID {
			return newError(DuplicateEmployeeId, tok.Line)
		}
		if tooLong(tok.Value, MaxEmployeeIDLen) {
			return newError(EmployeeIdTooLong, tok.Line)
		}
		if !isDigits(tok.Value) {
			return newError(EmployeeIdNotNumeric, tok.Line)
		}
		s.employeeID, s.haveID = tok.Value, true

	case employeeNameKey:
		if s.haveName {
			return newError(DuplicateEmployeeName, tok.Line)
		}
		if tooLong(tok.Value, MaxEmployeeNameLen) {
			return newError(EmployeeNameTooLong, tok.Line)
		}
		s.name, s.haveName = tok.Value, true

	case timesheetsKey:
		if err := s.requireEmployee(tok.Line); err != nil {
			return err
		}
		if err := s.closeSection(); err != nil {
			return err
		}
		date, err := time.Parse(dateLayout, tok.Value)
		if err != nil {
			return &ImportError{Kind: InvalidDate, Line: tok.Line, Detail: tok.Value}
		}
		s.date = date
		s.inSection = true
		s.sectionLine = tok.Line
		s.sectionEntries = 0
	}
	return nil
}

// parseTimeEntry validates "start;end;\"description\";project". The
// returned entry carries an unresolved project holding only the code.
func parseTimeEntry(tok Token) (*TimeEntry, error) {
	f := tok.Fields
	if len(f) != entryFields {
		return nil, &ImportError{Kind: IncorrectFieldCount, Line: tok.Line, Detail: "expected 4 fields"}
	}
	for _, v := range f {
		if strings.TrimSpace(v) == "" {
			return nil, newError(EmptyField, tok.Line)
		}
	}

	start, ok := ParseClock(f[0])
	if !ok {
		return nil, &ImportError{Kind: InvalidTime, Line: tok.Line, Detail: f[0]}
	}
	end, ok := ParseClock(f[1])
	if !ok {
		return nil, &ImportError{Kind: InvalidTime, Line: tok.Line, Detail: f[1]}
	}
	if start.Minutes() > end.Minutes() {
		return nil, newError(EndTimeBeforeStartTime, tok.Line)
	}

	desc := f[2]
	if len(desc) < 2 || !strings.HasPrefix(desc, `"`) || !strings.HasSuffix(desc, `"`) {
		return nil, newError(DescriptionNotQuoted, tok.Line)
	}
	desc = desc[1 : len(desc)-1]
	if desc == "" {
		return nil, newError(EmptyField, tok.Line)
	}
	if tooLong(desc, MaxDescriptionLen) {
		return nil, newError(DescriptionTooLong, tok.Line)
	}

	code := f[3]
	if strings.HasPrefix(code, `"`) || strings.HasSuffix(code, `"`) {
		return nil, newError(ProjectQuoted, tok.Line)
	}
	if tooLong(code, MaxProjectCodeLen) {
		return nil, newError(ProjectTooLong, tok.Line)
	}

	return &TimeEntry{
		Start:       start,
		End:         end,
		Description: desc,
		Project:     &Project{Code: code},
	}, nil
}

// ParseClock parses H:MM or HH:MM on a 24-hour clock.
func ParseClock(s string) (Clock, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) < 1 || len(h) > 2 || len(m) != 2 || !isDigits(h) || !isDigits(m) {
		return Clock{}, false
	}
	hour, _ := strconv.Atoi(h)
	minute, _ := strconv.Atoi(m)
	if hour > 23 || minute > 59 {
		return Clock{}, false
	}
	return Clock{Hour: hour, Minute: minute}, true
}
