package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a content error found while tokenizing or parsing
// an import file. The set is closed; every parser reports one of these.
type ErrorKind int

const (
	// Structural
	EmptyContent ErrorKind = iota + 1
	InvalidKeyValueFormat
	LeadingWhitespace
	TrailingWhitespace
	UnknownKey
	EmptyField
	IncorrectFieldCount

	// Employee identity
	MissingEmployeeId
	MissingEmployeeName
	DuplicateEmployeeId
	DuplicateEmployeeName
	EmployeeIdTooLong
	EmployeeNameTooLong
	EmployeeIdNotNumeric

	// Timesheet sections
	MissingTimesheetSection
	TimesheetSectionBeforeEmployeeData
	EmptyTimesheetSection

	// Timesheet fields
	InvalidDate
	InvalidTime
	EndTimeBeforeStartTime
	DescriptionNotQuoted
	DescriptionTooLong
	ProjectTooLong
	ProjectQuoted

	// Todo lists
	MissingAssignee
	AssigneeTooLong
	TitleTooLong
	TodosSectionBeforeAssignee
	EmptyTodoSection

	// Wishlists
	MissingWishlistName
	DuplicateWishlistName
	WishlistNameTooLong
	MissingPin
	DuplicatePin
	PinNotNumeric
	ItemsSectionBeforeWishlist
	EmptyWishlistSection
	ItemNameTooLong
	CategoryTooLong
	InvalidBoughtFlag
	PinTooLong
)

type kindInfo struct {
	name    string
	code    string
	message string
}

var kinds = map[ErrorKind]kindInfo{
	EmptyContent:          {"EmptyContent", "IMP001", "File content is empty."},
	InvalidKeyValueFormat: {"InvalidKeyValueFormat", "IMP002", "Invalid key-value format; expected exactly one ': ' separator."},
	LeadingWhitespace:     {"LeadingWhitespace", "IMP003", "Leading whitespace detected in field."},
	TrailingWhitespace:    {"TrailingWhitespace", "IMP004", "Trailing whitespace detected in field."},
	UnknownKey:            {"UnknownKey", "IMP005", "Unknown key found in the file."},
	EmptyField:            {"EmptyField", "IMP006", "One or more fields are empty."},
	IncorrectFieldCount:   {"IncorrectFieldCount", "IMP007", "Incorrect number of fields in line."},

	MissingEmployeeId:     {"MissingEmployeeId", "IMP101", "Employee ID is missing."},
	MissingEmployeeName:   {"MissingEmployeeName", "IMP102", "Employee name is missing."},
	DuplicateEmployeeId:   {"DuplicateEmployeeId", "IMP103", "Duplicate employee ID found."},
	DuplicateEmployeeName: {"DuplicateEmployeeName", "IMP104", "Duplicate employee name found."},
	EmployeeIdTooLong:     {"EmployeeIdTooLong", "IMP105", fmt.Sprintf("Employee ID exceeds maximum length of %d characters.", MaxEmployeeIDLen)},
	EmployeeNameTooLong:   {"EmployeeNameTooLong", "IMP106", fmt.Sprintf("Employee name exceeds maximum length of %d characters.", MaxEmployeeNameLen)},
	EmployeeIdNotNumeric:  {"EmployeeIdNotNumeric", "IMP107", "Employee ID must be numeric."},

	MissingTimesheetSection:            {"MissingTimesheetSection", "IMP201", "No TIMESHEETS section found in the file."},
	TimesheetSectionBeforeEmployeeData: {"TimesheetSectionBeforeEmployeeData", "IMP202", "TIMESHEETS section appears before employee data."},
	EmptyTimesheetSection:              {"EmptyTimesheetSection", "IMP203", "TIMESHEETS section is empty."},

	InvalidDate:            {"InvalidDate", "IMP301", "Invalid date format; expected YYYY-MM-DD."},
	InvalidTime:            {"InvalidTime", "IMP302", "Invalid time format; expected HH:MM."},
	EndTimeBeforeStartTime: {"EndTimeBeforeStartTime", "IMP303", "End time is before start time."},
	DescriptionNotQuoted:   {"DescriptionNotQuoted", "IMP304", "Description field must be enclosed in double quotes."},
	DescriptionTooLong:     {"DescriptionTooLong", "IMP305", fmt.Sprintf("Description exceeds maximum length of %d characters.", MaxDescriptionLen)},
	ProjectTooLong:         {"ProjectTooLong", "IMP306", fmt.Sprintf("Project code exceeds maximum length of %d characters.", MaxProjectCodeLen)},
	ProjectQuoted:          {"ProjectQuoted", "IMP307", "Project code must not be quoted."},

	MissingAssignee:            {"MissingAssignee", "IMP401", "Todo item appears before any assignee."},
	AssigneeTooLong:            {"AssigneeTooLong", "IMP402", fmt.Sprintf("Assignee exceeds maximum length of %d characters.", MaxAssigneeLen)},
	TitleTooLong:               {"TitleTooLong", "IMP403", fmt.Sprintf("Todo title exceeds maximum length of %d characters.", MaxTitleLen)},
	TodosSectionBeforeAssignee: {"TodosSectionBeforeAssignee", "IMP404", "Todos section appears before any assignee."},
	EmptyTodoSection:           {"EmptyTodoSection", "IMP405", "Assignee has no todo items."},

	MissingWishlistName:        {"MissingWishlistName", "IMP501", "Wishlist name is missing."},
	DuplicateWishlistName:      {"DuplicateWishlistName", "IMP502", "Duplicate wishlist name found."},
	WishlistNameTooLong:        {"WishlistNameTooLong", "IMP503", fmt.Sprintf("Wishlist name exceeds maximum length of %d characters.", MaxWishlistNameLen)},
	MissingPin:                 {"MissingPin", "IMP504", "Parent or child PIN is missing."},
	DuplicatePin:               {"DuplicatePin", "IMP505", "PIN defined more than once for the same wishlist."},
	PinNotNumeric:              {"PinNotNumeric", "IMP506", "PIN must be numeric."},
	ItemsSectionBeforeWishlist: {"ItemsSectionBeforeWishlist", "IMP507", "Items section appears before any wishlist."},
	EmptyWishlistSection:       {"EmptyWishlistSection", "IMP508", "Wishlist has no items."},
	ItemNameTooLong:            {"ItemNameTooLong", "IMP509", fmt.Sprintf("Item name exceeds maximum length of %d characters.", MaxItemNameLen)},
	CategoryTooLong:            {"CategoryTooLong", "IMP510", fmt.Sprintf("Category exceeds maximum length of %d characters.", MaxCategoryLen)},
	InvalidBoughtFlag:          {"InvalidBoughtFlag", "IMP511", "Bought flag must be true or false."},
	PinTooLong:                 {"PinTooLong", "IMP512", fmt.Sprintf("PIN exceeds maximum length of %d digits.", MaxPinLen)},
}

// String returns the kind's identifier, e.g. "EmptyField".
func (k ErrorKind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Message returns the human-readable description of the kind.
func (k ErrorKind) Message() string {
	if info, ok := kinds[k]; ok {
		return info.message
	}
	return "Unknown parsing error."
}

// Code returns the support reference code, e.g. "IMP006".
func (k ErrorKind) Code() string {
	if info, ok := kinds[k]; ok {
		return info.code
	}
	return defaultMessage.Code
}

// Error lets a bare kind be used as an errors.Is target:
//
//	errors.Is(err, core.EmptyTimesheetSection)
func (k ErrorKind) Error() string {
	return k.Message()
}

// ImportError is a content error located in the source text.
// Line is 1-based; zero means the error concerns the text as a whole.
type ImportError struct {
	Kind   ErrorKind
	Line   int
	Detail string
}

func (e *ImportError) Error() string {
	msg := e.Kind.Message()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// Is matches another *ImportError or a bare ErrorKind of the same kind.
func (e *ImportError) Is(target error) bool {
	switch t := target.(type) {
	case ErrorKind:
		return e.Kind == t
	case *ImportError:
		return e.Kind == t.Kind
	}
	return false
}

func newError(kind ErrorKind, line int) *ImportError {
	return &ImportError{Kind: kind, Line: line}
}

// KindOf reports the ErrorKind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind, true
	}
	return 0, false
}

var (
	// ErrNoTransaction is returned by writer operations that need an open transaction.
	ErrNoTransaction = errors.New("no transaction open")

	// ErrTransactionOpen is returned when a second transaction is begun on the same writer.
	ErrTransactionOpen = errors.New("transaction already open")

	// ErrUnknownFormat is returned when no format is registered under a key.
	ErrUnknownFormat = errors.New("unknown import format")

	// ErrFileTooLarge is returned by the file reader when the size limit is exceeded.
	ErrFileTooLarge = errors.New("file too large")
)
