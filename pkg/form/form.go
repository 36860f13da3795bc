// Package form turns submitted HTML forms into typed records. Every handler
// gets either a valid record or a *ValidationError before it touches the store.
package form

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"ledger/models"
	"ledger/pkg/currency"

	"github.com/badoux/checkmail"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Kind enumerates why a field was rejected.
type Kind int

const (
	KindMissing Kind = iota + 1
	KindInvalidNumber
	KindInvalidDate
	KindTooLong
	KindInvalidEmail
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindInvalidNumber:
		return "invalid_number"
	case KindInvalidDate:
		return "invalid_date"
	case KindTooLong:
		return "too_long"
	case KindInvalidEmail:
		return "invalid_email"
	}
	return "unknown"
}

// ErrMissingField is matched by errors.Is for any KindMissing error.
var ErrMissingField = errors.New("required field missing")

// ValidationError describes the first rejected field of a form.
type ValidationError struct {
	Field string
	Kind  Kind
	Limit int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form field %q: %s", e.Field, e.Kind)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMissingField && e.Kind == KindMissing
}

// Message is the text shown to the user.
func (e *ValidationError) Message() string {
	label := fieldLabel(e.Field)
	switch e.Kind {
	case KindMissing:
		return "All fields are required."
	case KindInvalidNumber:
		return label + " must be a number."
	case KindInvalidDate:
		return label + " must be a date in YYYY-MM-DD format."
	case KindTooLong:
		return fmt.Sprintf("%s must be at most %d characters.", label, e.Limit)
	case KindInvalidEmail:
		return "Please enter a valid email address."
	}
	return "Invalid form submission."
}

// Message extracts the user-facing text from any error returned by this
// package, falling back to a generic sentence.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message()
	}
	return "Invalid form submission."
}

func fieldLabel(field string) string {
	if field == "" {
		return "Value"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

const (
	MaxName     = 100
	MaxCategory = 50
	MaxEmail    = 120
	MaxFreeDate = 50
)

// Statement is a validated multi-tenant ledger entry.
type Statement struct {
	Date     time.Time
	Name     string
	Amount   float64
	Category string
}

// StatementUpdate carries the target id alongside the new values.
type StatementUpdate struct {
	ID uint
	Statement
}

// SharedStatement is a validated single-tenant ledger entry.
type SharedStatement struct {
	Date     string
	Name     string
	Number   int
	Category string
}

// Credentials are the e-mail/password pair used by register and login.
type Credentials struct {
	Email    string
	Password string
}

type statementBody struct {
	ID       string `form:"id"`
	Date     string `form:"date" binding:"required"`
	Name     string `form:"name" binding:"required"`
	Amount   string `form:"amount" binding:"required"`
	Category string `form:"category" binding:"required"`
}

type sharedStatementBody struct {
	Date     string `form:"date" binding:"required,max=50"`
	Name     string `form:"name" binding:"required,max=100"`
	Number   string `form:"number" binding:"required"`
	Category string `form:"category" binding:"required,max=50"`
}

type credentialsBody struct {
	Email    string `form:"email" binding:"required,max=120"`
	Password string `form:"password" binding:"required"`
}

// ParseStatement reads date, name, amount and category.
func ParseStatement(r *http.Request) (Statement, error) {
	var body statementBody
	if err := bind(r, &body); err != nil {
		return Statement{}, err
	}
	return body.toStatement()
}

// ParseStatementUpdate additionally requires a numeric id field.
func ParseStatementUpdate(r *http.Request) (StatementUpdate, error) {
	var body statementBody
	bindErr := bind(r, &body)
	if strings.TrimSpace(body.ID) == "" {
		return StatementUpdate{}, &ValidationError{Field: "id", Kind: KindMissing}
	}
	id, ok := ParseID(body.ID)
	if !ok {
		return StatementUpdate{}, &ValidationError{Field: "id", Kind: KindInvalidNumber}
	}
	if bindErr != nil {
		return StatementUpdate{ID: id}, bindErr
	}
	st, err := body.toStatement()
	if err != nil {
		return StatementUpdate{ID: id}, err
	}
	return StatementUpdate{ID: id, Statement: st}, nil
}

func (b statementBody) toStatement() (Statement, error) {
	return ValidateStatement(b.Date, b.Name, b.Amount, b.Category)
}

// ValidateStatement applies the statement rules to raw text values. Web forms
// and file imports both go through it. Lengths are counted in characters.
func ValidateStatement(date, name, amount, category string) (Statement, error) {
	date = strings.TrimSpace(date)
	name = strings.TrimSpace(name)
	amount = strings.TrimSpace(amount)
	category = strings.TrimSpace(category)
	if err := requireAll(
		field{"date", date}, field{"name", name}, field{"amount", amount}, field{"category", category},
	); err != nil {
		return Statement{}, err
	}
	if utf8.RuneCountInString(name) > MaxName {
		return Statement{}, &ValidationError{Field: "name", Kind: KindTooLong, Limit: MaxName}
	}
	if utf8.RuneCountInString(category) > MaxCategory {
		return Statement{}, &ValidationError{Field: "category", Kind: KindTooLong, Limit: MaxCategory}
	}
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return Statement{}, &ValidationError{Field: "date", Kind: KindInvalidDate}
	}
	a, err := currency.ParseAmount(amount)
	if err != nil {
		return Statement{}, &ValidationError{Field: "amount", Kind: KindInvalidNumber}
	}
	return Statement{Date: d, Name: name, Amount: a, Category: category}, nil
}

// ParseSharedStatement reads date (free text), name, number and category.
func ParseSharedStatement(r *http.Request) (SharedStatement, error) {
	var body sharedStatementBody
	if err := bind(r, &body); err != nil {
		return SharedStatement{}, err
	}
	date := strings.TrimSpace(body.Date)
	name := strings.TrimSpace(body.Name)
	category := strings.TrimSpace(body.Category)
	if err := requireAll(
		field{"date", date}, field{"name", name}, field{"number", body.Number}, field{"category", category},
	); err != nil {
		return SharedStatement{}, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(body.Number))
	if err != nil {
		return SharedStatement{}, &ValidationError{Field: "number", Kind: KindInvalidNumber}
	}
	return SharedStatement{Date: date, Name: name, Number: n, Category: category}, nil
}

// ParseRegistration validates the e-mail format on top of ParseLogin.
func ParseRegistration(r *http.Request) (Credentials, error) {
	creds, err := ParseLogin(r)
	if err != nil {
		return Credentials{}, err
	}
	if err := checkmail.ValidateFormat(creds.Email); err != nil {
		return Credentials{}, &ValidationError{Field: "email", Kind: KindInvalidEmail}
	}
	return creds, nil
}

// ParseLogin only requires both fields to be present.
func ParseLogin(r *http.Request) (Credentials, error) {
	var body credentialsBody
	if err := bind(r, &body); err != nil {
		return Credentials{}, err
	}
	email := strings.TrimSpace(body.Email)
	if err := requireAll(field{"email", email}, field{"password", body.Password}); err != nil {
		return Credentials{}, err
	}
	return Credentials{Email: strings.ToLower(email), Password: body.Password}, nil
}

// ParseID accepts positive decimal ids such as path parameters.
func ParseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

type field struct {
	name, value string
}

func requireAll(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Kind: KindMissing}
		}
	}
	return nil
}

// bind decodes the form and converts validator failures into ValidationError.
func bind(r *http.Request, dst any) error {
	err := binding.Form.Bind(r, dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("decode form: %w", err)
	}
	fe := verrs[0]
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: name, Kind: KindMissing}
	case "max":
		limit, _ := strconv.Atoi(fe.Param())
		return &ValidationError{Field: name, Kind: KindTooLong, Limit: limit}
	}
	return &ValidationError{Field: name, Kind: KindMissing}
}
