package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Field length limits enforced by the parsers.
const (
	MaxEmployeeIDLen   = 5
	MaxEmployeeNameLen = 100
	MaxDescriptionLen  = 200
	MaxProjectCodeLen  = 20
	MaxAssigneeLen     = 100
	MaxTitleLen        = 200
	MaxWishlistNameLen = 100
	MaxItemNameLen     = 100
	MaxCategoryLen     = 50
	MaxPinLen          = 20
)

// TxBeginner opens database transactions.
// Satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// =============================================================================
// Reference entities
// =============================================================================

// Employee is identified by EmployeeID; Name is the latest value seen.
// ID is the surrogate key and stays zero until the entity is persisted.
type Employee struct {
	ID         int64  `json:"id" yaml:"id"`
	EmployeeID string `json:"employeeId" yaml:"employeeId"`
	Name       string `json:"name" yaml:"name"`
}

// Project is identified by its code.
type Project struct {
	ID   int64  `json:"id" yaml:"id"`
	Code string `json:"code" yaml:"code"`
}

// GiftCategory is identified by its name.
type GiftCategory struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Wishlist owns wishlist items. Names are unique per import file.
type Wishlist struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	ParentPin string `json:"-" yaml:"-"`
	ChildPin  string `json:"-" yaml:"-"`
}

// References is the snapshot of already persisted reference entities a
// parser links new records to.
type References struct {
	Employees  []*Employee
	Projects   []*Project
	Categories []*GiftCategory
}

// =============================================================================
// Records
// =============================================================================

// TodoItem is a single entry of a todo list.
type TodoItem struct {
	ID          int64  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Assignee    string `json:"assignee" yaml:"assignee"`
	IsCompleted bool   `json:"isCompleted" yaml:"isCompleted"`
}

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Duration returns the offset from midnight.
func (c Clock) Duration() time.Duration {
	return time.Duration(c.Minutes()) * time.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MarshalText renders the clock as HH:MM.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ClockFromDuration converts an offset from midnight to a Clock.
func ClockFromDuration(d time.Duration) Clock {
	m := int(d / time.Minute)
	return Clock{Hour: m / 60, Minute: m % 60}
}

// TimeEntry is one worked interval of an employee on a project.
type TimeEntry struct {
	ID          int64     `json:"id" yaml:"id"`
	Date        time.Time `json:"date" yaml:"date"`
	Start       Clock     `json:"start" yaml:"start"`
	End         Clock     `json:"end" yaml:"end"`
	Description string    `json:"description" yaml:"description"`
	Employee    *Employee `json:"employee" yaml:"employee"`
	Project     *Project  `json:"project" yaml:"project"`
}

// WishlistItem is a gift on a wishlist.
type WishlistItem struct {
	ID       int64         `json:"id" yaml:"id"`
	ItemName string        `json:"itemName" yaml:"itemName"`
	Bought   bool          `json:"bought" yaml:"bought"`
	Wishlist *Wishlist     `json:"wishlist" yaml:"wishlist"`
	Category *GiftCategory `json:"category" yaml:"category"`
}

// TimeEntryFilter narrows time entry listings. Zero fields match everything.
type TimeEntryFilter struct {
	EmployeeID int64
	ProjectID  int64
}
