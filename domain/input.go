package domain

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Field limits shared by the HTTP schemas and the service checks.
const (
	MaxBoardNameLen        = 100
	MaxBoardDescriptionLen = 500
	MaxStatusNameLen       = 100
	MaxTaskTitleLen        = 200
	MaxTaskDescriptionLen  = 1000
	MinPosition            = 0
	MaxPosition            = math.MaxInt32
	uuidCanonicalLen       = 36
)

// NullableString distinguishes an absent field (Set == false) from an
// explicit null (Set && !Valid) in partial updates.
type NullableString struct {
	Set   bool
	Valid bool
	Value string
}

// Null returns a NullableString that clears the field.
func Null() NullableString { return NullableString{Set: true} }

// Some returns a NullableString that sets the field to s.
func Some(s string) NullableString { return NullableString{Set: true, Valid: true, Value: s} }

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Valid = false
		n.Value = ""
		return nil
	}
	var s string
	if err := sonic.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Valid = true
	n.Value = s
	return nil
}

// Ptr returns the value as a nullable pointer.
func (n NullableString) Ptr() *string {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// IsUUID reports whether s is a canonical textual UUID.
func IsUUID(s string) bool {
	return len(s) == uuidCanonicalLen && uuid.Validate(s) == nil
}

// CanonicalID lower-cases a UUID to the form identifiers are stored in.
func CanonicalID(s string) string { return strings.ToLower(s) }

type CreateBoardInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (in CreateBoardInput) Validate() error {
	ve := &ValidationError{}
	checkRequired(ve, "name", in.Name, MaxBoardNameLen, "Name is required")
	if in.Description != nil {
		checkMax(ve, "description", *in.Description, MaxBoardDescriptionLen)
	}
	return ve.Err()
}

type UpdateBoardInput struct {
	Name        *string        `json:"name"`
	Description NullableString `json:"description"`
}

func (in UpdateBoardInput) Validate() error {
	ve := &ValidationError{}
	if in.Name != nil {
		checkRequired(ve, "name", *in.Name, MaxBoardNameLen, "Name is required")
	}
	if in.Description.Valid {
		checkMax(ve, "description", in.Description.Value, MaxBoardDescriptionLen)
	}
	return ve.Err()
}

type CreateStatusInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Position    int     `json:"position"`
}

func (in CreateStatusInput) Validate() error {
	ve := &ValidationError{}
	checkRequired(ve, "name", in.Name, MaxStatusNameLen, "Name is required")
	checkPosition(ve, in.Position)
	return ve.Err()
}

type UpdateStatusInput struct {
	Name        *string        `json:"name"`
	Description NullableString `json:"description"`
	Position    *int           `json:"position"`
}

func (in UpdateStatusInput) Validate() error {
	ve := &ValidationError{}
	if in.Name != nil {
		checkRequired(ve, "name", *in.Name, MaxStatusNameLen, "Name is required")
	}
	if in.Position != nil {
		checkPosition(ve, *in.Position)
	}
	return ve.Err()
}

type CreateTaskInput struct {
	BoardStatusID string  `json:"boardStatusId"`
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	Position      int     `json:"position"`
}

func (in CreateTaskInput) Validate() error {
	ve := &ValidationError{}
	checkUUID(ve, "boardStatusId", in.BoardStatusID)
	checkRequired(ve, "title", in.Title, MaxTaskTitleLen, "Title is required")
	if in.Description != nil {
		checkMax(ve, "description", *in.Description, MaxTaskDescriptionLen)
	}
	checkPosition(ve, in.Position)
	return ve.Err()
}

type UpdateTaskInput struct {
	BoardStatusID *string        `json:"boardStatusId"`
	Title         *string        `json:"title"`
	Description   NullableString `json:"description"`
	Position      *int           `json:"position"`
}

func (in UpdateTaskInput) Validate() error {
	ve := &ValidationError{}
	if in.BoardStatusID != nil {
		checkUUID(ve, "boardStatusId", *in.BoardStatusID)
	}
	if in.Title != nil {
		checkRequired(ve, "title", *in.Title, MaxTaskTitleLen, "Title is required")
	}
	if in.Description.Valid {
		checkMax(ve, "description", in.Description.Value, MaxTaskDescriptionLen)
	}
	if in.Position != nil {
		checkPosition(ve, *in.Position)
	}
	return ve.Err()
}

type CreateSubTaskInput struct {
	TaskID      string `json:"taskId"`
	Description string `json:"description"`
	IsCompleted *bool  `json:"isCompleted"`
}

func (in CreateSubTaskInput) Validate() error {
	ve := &ValidationError{}
	checkUUID(ve, "taskId", in.TaskID)
	if in.Description == "" {
		ve.Add("description", "Description is required")
	}
	return ve.Err()
}

type UpdateSubTaskInput struct {
	Description *string `json:"description"`
	IsCompleted *bool   `json:"isCompleted"`
}

func (in UpdateSubTaskInput) Validate() error {
	ve := &ValidationError{}
	if in.Description != nil && *in.Description == "" {
		ve.Add("description", "Description is required")
	}
	return ve.Err()
}

func checkRequired(ve *ValidationError, field, v string, max int, requiredMsg string) {
	if v == "" {
		ve.Add(field, requiredMsg)
		return
	}
	checkMax(ve, field, v, max)
}

func checkMax(ve *ValidationError, field, v string, max int) {
	if utf8.RuneCountInString(v) > max {
		ve.Add(field, fmt.Sprintf("String must contain at most %d character(s)", max))
	}
}

func checkPosition(ve *ValidationError, pos int) {
	switch {
	case pos < MinPosition:
		ve.Add("position", fmt.Sprintf("Number must be greater than or equal to %d", MinPosition))
	case pos > MaxPosition:
		ve.Add("position", fmt.Sprintf("Number must be less than or equal to %d", MaxPosition))
	}
}

func checkUUID(ve *ValidationError, field, v string) {
	if !IsUUID(v) {
		ve.Add(field, "Invalid uuid")
	}
}
