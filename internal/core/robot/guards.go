// Package robot contains the pure business logic for robot operations.
// Guards are pure functions that evaluate preconditions without side effects.
package robot

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrDuplicateName means another robot already uses the name, ignoring case.
	ErrDuplicateName = errors.New("duplicate robot name")
	// ErrNotFound means no robot has the requested id.
	ErrNotFound = errors.New("robot not found")
	// ErrInvalidInput means a field or query option failed validation.
	ErrInvalidInput = errors.New("invalid robot input")
)

// Robot types.
const (
	TypeIndustrial  = "industrial"
	TypeService     = "service"
	TypeMedical     = "medical"
	TypeEducational = "educational"
	TypeOther       = "other"
)

// Field limits.
const (
	NameMinLen  = 2
	NameMaxLen  = 50
	LabelMinLen = 3
	LabelMaxLen = 100
	MinYear     = 1950
)

// Types lists every robot type in display order.
var Types = []string{TypeIndustrial, TypeService, TypeMedical, TypeEducational, TypeOther}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	// Cause classifies a refusal; it is wrapped by Error.
	Cause error
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Cause != nil {
		return fmt.Errorf("%w: %s", r.Cause, r.Reason)
	}
	return fmt.Errorf("%s", r.Reason)
}

func invalid(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...), Cause: ErrInvalidInput}
}

// IsValidType reports whether t is one of the five robot types.
func IsValidType(t string) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Fields holds the user-editable attributes of a robot.
type Fields struct {
	Name  string
	Label string
	Year  int
	Type  string
}

// Normalize trims text fields and lowercases the type.
func Normalize(f Fields) Fields {
	return Fields{
		Name:  strings.TrimSpace(f.Name),
		Label: strings.TrimSpace(f.Label),
		Year:  f.Year,
		Type:  strings.ToLower(strings.TrimSpace(f.Type)),
	}
}

// ValidateFields evaluates every field of a normalized robot.
// Rules:
// - Name must be 2-50 characters
// - Label must be 3-100 characters
// - Year must be within [1950, currentYear]
// - Type must be one of the known types
func ValidateFields(f Fields, currentYear int) GuardResult {
	if r := validateName(f.Name); !r.Allowed {
		return r
	}
	if r := validateLabel(f.Label); !r.Allowed {
		return r
	}
	if r := validateYear(f.Year, currentYear); !r.Allowed {
		return r
	}
	if r := validateType(f.Type); !r.Allowed {
		return r
	}
	return GuardResult{Allowed: true}
}

// Changes holds a partial update. Nil fields are left untouched.
type Changes struct {
	Name     *string
	Label    *string
	Year     *int
	Type     *string
	Archived *bool
}

// IsEmpty reports whether no field is set.
func (c Changes) IsEmpty() bool {
	return c.Name == nil && c.Label == nil && c.Year == nil && c.Type == nil && c.Archived == nil
}

// NormalizeChanges trims the provided text fields and lowercases the type.
func NormalizeChanges(c Changes) Changes {
	out := c
	if c.Name != nil {
		v := strings.TrimSpace(*c.Name)
		out.Name = &v
	}
	if c.Label != nil {
		v := strings.TrimSpace(*c.Label)
		out.Label = &v
	}
	if c.Type != nil {
		v := strings.ToLower(strings.TrimSpace(*c.Type))
		out.Type = &v
	}
	return out
}

// ValidateChanges evaluates only the fields present in c.
func ValidateChanges(c Changes, currentYear int) GuardResult {
	if c.Name != nil {
		if r := validateName(*c.Name); !r.Allowed {
			return r
		}
	}
	if c.Label != nil {
		if r := validateLabel(*c.Label); !r.Allowed {
			return r
		}
	}
	if c.Year != nil {
		if r := validateYear(*c.Year, currentYear); !r.Allowed {
			return r
		}
	}
	if c.Type != nil {
		if r := validateType(*c.Type); !r.Allowed {
			return r
		}
	}
	return GuardResult{Allowed: true}
}

func validateName(name string) GuardResult {
	n := utf8.RuneCountInString(name)
	if n < NameMinLen || n > NameMaxLen {
		return invalid("name must be between %d and %d characters (got %d)", NameMinLen, NameMaxLen, n)
	}
	return GuardResult{Allowed: true}
}

func validateLabel(label string) GuardResult {
	n := utf8.RuneCountInString(label)
	if n < LabelMinLen || n > LabelMaxLen {
		return invalid("label must be between %d and %d characters (got %d)", LabelMinLen, LabelMaxLen, n)
	}
	return GuardResult{Allowed: true}
}

func validateYear(year, currentYear int) GuardResult {
	if year < MinYear || year > currentYear {
		return invalid("year must be between %d and %d (got %d)", MinYear, currentYear, year)
	}
	return GuardResult{Allowed: true}
}

func validateType(t string) GuardResult {
	if !IsValidType(t) {
		return invalid("type must be one of %s (got %q)", strings.Join(Types, ", "), t)
	}
	return GuardResult{Allowed: true}
}

// CreateRobotContext provides context for robot creation guards.
type CreateRobotContext struct {
	Name       string
	NameExists bool // true if any robot, archived or not, uses this name ignoring case
}

// CanCreateRobot evaluates whether a robot can be created.
// Rules:
// - Name must be unique ignoring case, archived robots included
func CanCreateRobot(ctx CreateRobotContext) GuardResult {
	if ctx.NameExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("a robot named %q already exists", ctx.Name),
			Cause:   ErrDuplicateName,
		}
	}
	return GuardResult{Allowed: true}
}

// RenameRobotContext provides context for robot rename guards.
type RenameRobotContext struct {
	RobotID          string
	NewName          string
	NameTakenByOther bool // true if a different robot uses NewName ignoring case
}

// CanRenameRobot evaluates whether a robot can take a new name.
// Rules:
// - No other robot may use the name ignoring case; the robot itself may
func CanRenameRobot(ctx RenameRobotContext) GuardResult {
	if ctx.NameTakenByOther {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot rename %s: a robot named %q already exists", ctx.RobotID, ctx.NewName),
			Cause:   ErrDuplicateName,
		}
	}
	return GuardResult{Allowed: true}
}
