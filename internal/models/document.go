package models

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

type DocumentType string

const (
	DocumentTypeBill             DocumentType = "bill"
	DocumentTypeDischargeSummary DocumentType = "discharge_summary"
	DocumentTypeIDCard           DocumentType = "id_card"
)

// DocumentTypes lists every known document type in enumeration order.
// Validation output follows this order.
var DocumentTypes = []DocumentType{
	DocumentTypeBill,
	DocumentTypeDischargeSummary,
	DocumentTypeIDCard,
}

// ErrInvalidDocumentType is returned when a record carries a missing or unknown discriminant.
var ErrInvalidDocumentType = errors.New("invalid document type")

// ParseDocumentType maps a raw discriminant onto a known document type.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDocumentType, s)
}

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeBill, DocumentTypeDischargeSummary, DocumentTypeIDCard:
		return true
	}
	return false
}

// Rank is the position of t in DocumentTypes, or len(DocumentTypes) for unknown types.
func (t DocumentType) Rank() int {
	for i, known := range DocumentTypes {
		if known == t {
			return i
		}
	}
	return len(DocumentTypes)
}

// FieldText is an extracted field value kept as text until it is normalized.
// Strings decode to their content, null to blank, and any other JSON value
// to its raw text so the Validator can report it.
type FieldText string

func (f *FieldText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FieldText(s)
		return nil
	}
	*f = FieldText(data)
	return nil
}

// String returns the raw text.
func (f FieldText) String() string { return string(f) }

// Blank reports whether the field holds no usable text.
func (f FieldText) Blank() bool { return strings.TrimSpace(string(f)) == "" }

// FieldList is a list of extracted values. It decodes from an array, a single
// value (one item) or null. Blank items are dropped.
type FieldList []string

func (l *FieldList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	var items []FieldText
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
	} else {
		var one FieldText
		if err := one.UnmarshalJSON(data); err != nil {
			return err
		}
		items = []FieldText{one}
	}

	out := make(FieldList, 0, len(items))
	for _, it := range items {
		if !it.Blank() {
			out = append(out, strings.TrimSpace(string(it)))
		}
	}
	if len(out) == 0 {
		out = nil
	}
	*l = out
	return nil
}

// Record is the extracted content of one document. The concrete types are
// *Bill, *DischargeSummary and *IDCard.
type Record interface {
	Type() DocumentType
}

// NamedRecord is implemented by records that carry a patient name.
type NamedRecord interface {
	Record
	PatientNameField() FieldText
}

type Bill struct {
	DocType       DocumentType `json:"type" validate:"required,eq=bill"`
	HospitalName  FieldText    `json:"hospital_name"`
	TotalAmount   FieldText    `json:"total_amount"`
	DateOfService FieldText    `json:"date_of_service"`
	PatientName   FieldText    `json:"patient_name"`
	BillItems     FieldList    `json:"bill_items"`
}

func (b *Bill) Type() DocumentType           { return b.DocType }
func (b *Bill) PatientNameField() FieldText { return b.PatientName }

type DischargeSummary struct {
	DocType        DocumentType `json:"type" validate:"required,eq=discharge_summary"`
	PatientName    FieldText    `json:"patient_name"`
	Diagnosis      FieldText    `json:"diagnosis"`
	AdmissionDate  FieldText    `json:"admission_date"`
	DischargeDate  FieldText    `json:"discharge_date"`
	TreatingDoctor FieldText    `json:"treating_doctor"`
	Procedures     FieldList    `json:"procedures"`
}

func (d *DischargeSummary) Type() DocumentType           { return d.DocType }
func (d *DischargeSummary) PatientNameField() FieldText { return d.PatientName }

type IDCard struct {
	DocType           DocumentType `json:"type" validate:"required,eq=id_card"`
	PatientName       FieldText    `json:"patient_name"`
	PolicyNumber      FieldText    `json:"policy_number"`
	MemberID          FieldText    `json:"member_id"`
	InsuranceProvider FieldText    `json:"insurance_provider"`
}

func (c *IDCard) Type() DocumentType           { return c.DocType }
func (c *IDCard) PatientNameField() FieldText { return c.PatientName }

// NewRecord returns an empty record of the given type with its discriminant set.
func NewRecord(t DocumentType) (Record, error) {
	switch t {
	case DocumentTypeBill:
		return &Bill{DocType: t}, nil
	case DocumentTypeDischargeSummary:
		return &DischargeSummary{DocType: t}, nil
	case DocumentTypeIDCard:
		return &IDCard{DocType: t}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidDocumentType, t)
}

// DecodeRecord decodes a single JSON object into the record type named by its "type" field.
func DecodeRecord(data []byte) (Record, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	t, err := ParseDocumentType(head.Type)
	if err != nil {
		return nil, err
	}
	return DecodeRecordAs(t, data)
}

// DecodeRecordAs decodes data as a record of type t. A "type" field in the
// payload is ignored.
func DecodeRecordAs(t DocumentType, data []byte) (Record, error) {
	rec, err := NewRecord(t)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", t, err)
	}
	setType(rec, t)
	return rec, nil
}

func setType(rec Record, t DocumentType) {
	switch r := rec.(type) {
	case *Bill:
		r.DocType = t
	case *DischargeSummary:
		r.DocType = t
	case *IDCard:
		r.DocType = t
	}
}

// Bundle is the ordered set of records produced for one claim submission.
type Bundle []Record

// UnmarshalJSON decodes a JSON array of records.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode bundle: %w", err)
	}
	out := make(Bundle, 0, len(raw))
	for i, item := range raw {
		rec, err := DecodeRecord(item)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	*b = out
	return nil
}

// Types returns the document types present in the bundle, in bundle order.
func (b Bundle) Types() []DocumentType {
	types := make([]DocumentType, 0, len(b))
	for _, rec := range b {
		if rec != nil {
			types = append(types, rec.Type())
		}
	}
	return types
}
