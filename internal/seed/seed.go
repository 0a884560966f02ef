// Package seed reads the structured bulk-load document into a domain.SeedBatch.
package seed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/incident-analytics/internal/domain"
)

var (
	// ErrInvalidDocument wraps every structural problem with a seed document.
	ErrInvalidDocument = errors.New("invalid seed document")
	// ErrInvalidDate marks a missing or unparseable date.
	ErrInvalidDate = errors.New("invalid seed date")
)

// DateLayouts lists the accepted date forms, tried in order. Dates without a zone are UTC.
var DateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Code is an identifier that may arrive as a JSON string or number.
type Code string

func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("code must be a string or number: %w", err)
	}
	*c = Code(n.String())
	return nil
}

// Document mirrors the seed file layout.
type Document struct {
	Customers     []CustomerRecord     `json:"clientes" validate:"dive"`
	Employees     []EmployeeRecord     `json:"empleados" validate:"dive"`
	IncidentTypes []IncidentTypeRecord `json:"tipos_incidentes" validate:"dive"`
	Tickets       []TicketRecord       `json:"tickets_emitidos" validate:"dive"`
}

type CustomerRecord struct {
	ID       Code   `json:"id_cli" validate:"required"`
	Name     string `json:"nombre"`
	Phone    Code   `json:"telefono"`
	Province string `json:"provincia"`
}

type EmployeeRecord struct {
	ID      Code   `json:"id_emp" validate:"required"`
	Name    string `json:"nombre"`
	Level   int    `json:"nivel" validate:"gte=0"`
	HiredAt string `json:"fecha_contrato" validate:"omitempty,seeddate"`
}

type IncidentTypeRecord struct {
	ID   Code   `json:"id_inci" validate:"required"`
	Name string `json:"nombre"`
}

type TicketRecord struct {
	Customer     Code            `json:"cliente" validate:"required"`
	OpenedAt     string          `json:"fecha_apertura" validate:"required,seeddate"`
	ClosedAt     string          `json:"fecha_cierre" validate:"required,seeddate"`
	Maintenance  bool            `json:"es_mantenimiento"`
	Satisfaction int             `json:"satisfaccion_cliente"`
	IncidentType Code            `json:"tipo_incidencia" validate:"required"`
	Contacts     []ContactRecord `json:"contactos_con_empleados" validate:"dive"`
}

type ContactRecord struct {
	Employee Code    `json:"id_emp" validate:"required"`
	Date     string  `json:"fecha" validate:"required,seeddate"`
	Hours    float64 `json:"tiempo" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("seeddate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// Parse decodes and validates a seed document.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, describe(err)
	}
	return &doc, nil
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	problems := make([]string, 0, len(verrs))
	dateProblem := false
	for _, fe := range verrs {
		if fe.Tag() == "seeddate" || isDateField(fe.StructField()) {
			dateProblem = true
		}
		problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	sentinel := ErrInvalidDocument
	if dateProblem {
		sentinel = ErrInvalidDate
	}
	return fmt.Errorf("%w: %s", sentinel, strings.Join(problems, "; "))
}

func isDateField(name string) bool {
	switch name {
	case "OpenedAt", "ClosedAt", "Date", "HiredAt":
		return true
	}
	return false
}

// ParseDate tries every accepted layout.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// Batch converts the document into insertable domain values.
func (d *Document) Batch() (*domain.SeedBatch, error) {
	batch := &domain.SeedBatch{
		Customers:     make([]domain.Customer, 0, len(d.Customers)),
		Employees:     make([]domain.Employee, 0, len(d.Employees)),
		IncidentTypes: make([]domain.IncidentType, 0, len(d.IncidentTypes)),
		Tickets:       make([]domain.SeedTicket, 0, len(d.Tickets)),
	}
	for _, c := range d.Customers {
		batch.Customers = append(batch.Customers, domain.Customer{
			ID:       string(c.ID),
			Name:     c.Name,
			Phone:    string(c.Phone),
			Province: c.Province,
		})
	}
	for _, e := range d.Employees {
		employee := domain.Employee{ID: string(e.ID), Name: e.Name, Level: e.Level}
		if e.HiredAt != "" {
			hired, err := ParseDate(e.HiredAt)
			if err != nil {
				return nil, fmt.Errorf("employee %s: %w", e.ID, err)
			}
			employee.HiredAt = &hired
		}
		batch.Employees = append(batch.Employees, employee)
	}
	for _, k := range d.IncidentTypes {
		batch.IncidentTypes = append(batch.IncidentTypes, domain.IncidentType{ID: string(k.ID), Name: k.Name})
	}
	for i, t := range d.Tickets {
		opened, err := ParseDate(t.OpenedAt)
		if err != nil {
			return nil, fmt.Errorf("ticket %d opened: %w", i, err)
		}
		closed, err := ParseDate(t.ClosedAt)
		if err != nil {
			return nil, fmt.Errorf("ticket %d closed: %w", i, err)
		}
		entry := domain.SeedTicket{
			Ticket: domain.Ticket{
				CustomerID:   string(t.Customer),
				OpenedAt:     &opened,
				ClosedAt:     &closed,
				Maintenance:  t.Maintenance,
				Satisfaction: t.Satisfaction,
				IncidentType: string(t.IncidentType),
			},
			Contacts: make([]domain.Contact, 0, len(t.Contacts)),
		}
		for j, c := range t.Contacts {
			when, err := ParseDate(c.Date)
			if err != nil {
				return nil, fmt.Errorf("ticket %d contact %d: %w", i, j, err)
			}
			entry.Contacts = append(entry.Contacts, domain.Contact{
				EmployeeID:  string(c.Employee),
				ContactedAt: when,
				Hours:       c.Hours,
			})
		}
		batch.Tickets = append(batch.Tickets, entry)
	}
	return batch, nil
}

// ContactCount totals the nested contacts of every ticket.
func (d *Document) ContactCount() int {
	n := 0
	for _, t := range d.Tickets {
		n += len(t.Contacts)
	}
	return n
}

// String summarizes the document size for logs.
func (d *Document) String() string {
	return fmt.Sprintf("customers=%d employees=%d incident_types=%d tickets=%d contacts=%d",
		len(d.Customers), len(d.Employees), len(d.IncidentTypes), len(d.Tickets), d.ContactCount())
}
