package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/dirk.krummacker/contact-form/internal/model"
)

// contactSubmissions counts POST /api/contact outcomes: created, rejected or failed.
var contactSubmissions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "contact_submissions_total",
		Help: "Number of contact form submissions by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(contactSubmissions)
}

// ContactStore persists contacts. The store assigns the id and any default columns and returns
// the row as it was saved.
type ContactStore interface {
	InsertContact(ctx context.Context, name string, email string) (model.Contact, error)
}

// ContactInput is the body of a contact form submission. Both fields are required; the email
// address is not checked for a valid format.
type ContactInput struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required"`
}

// UnmarshalJSON accepts any scalar for name and email. Form scripts do not always send strings:
// null, false, 0 and "" count as not submitted, other numbers and true are kept as their JSON
// text. Objects and arrays are rejected.
func (in *ContactInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  json.RawMessage `json:"name"`
		Email json.RawMessage `json:"email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	name, err := formText(raw.Name)
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}
	email, err := formText(raw.Email)
	if err != nil {
		return fmt.Errorf("email: %w", err)
	}
	in.Name, in.Email = name, email
	return nil
}

func formText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return "", err
	}
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		if !v {
			return "", nil
		}
		return "true", nil
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return "", nil
		}
		return v.String(), nil
	default:
		return "", fmt.Errorf("expected a string, got %s", raw)
	}
}

// ValidationError reports required fields that were missing or empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// StorageError reports that the store failed to save a contact.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ContactService validates contact form submissions and saves them.
type ContactService struct {
	store    ContactStore
	validate *validator.Validate
}

// NewContactService returns a service that saves contacts in store.
func NewContactService(store ContactStore) *ContactService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their JSON names.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return &ContactService{store: store, validate: validate}
}

// Create validates the input and stores it as a new contact. It returns a *ValidationError
// without touching the store when a field is missing, and a *StorageError when the store fails.
// Every call that passes validation creates a new row, identical submissions included.
func (s *ContactService) Create(ctx context.Context, input ContactInput) (model.Contact, error) {
	if err := s.validateInput(input); err != nil {
		contactSubmissions.WithLabelValues("rejected").Inc()
		return model.Contact{}, err
	}
	contact, err := s.store.InsertContact(ctx, input.Name, input.Email)
	if err != nil {
		contactSubmissions.WithLabelValues("failed").Inc()
		return model.Contact{}, &StorageError{Err: err}
	}
	contactSubmissions.WithLabelValues("created").Inc()
	return contact, nil
}

func (s *ContactService) validateInput(input ContactInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	validationErr := &ValidationError{}
	for _, fe := range fieldErrs {
		validationErr.Fields = append(validationErr.Fields, fe.Field())
	}
	return validationErr
}
