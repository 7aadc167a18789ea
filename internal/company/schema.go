// Package company describes the editable fields of a company record and
// converts between store.Company rows and fieldmap.Map snapshots.
package company

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"placement/api/internal/fieldmap"
	"placement/api/internal/store"
)

type Kind int

const (
	KindText Kind = iota
	KindBool
	KindCategorical
	// KindReference holds a user id or null.
	KindReference
)

type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	// Multiline text may hold line breaks and tabs. Other text fields are a
	// single line and reject every control character.
	Multiline bool
	Options   []string
}

const (
	FieldCompanyName       = "companyName"
	FieldCompanyAddress    = "companyAddress"
	FieldDrive             = "drive"
	FieldTypeOfDrive       = "typeOfDrive"
	FieldFollowUp          = "followUp"
	FieldIsContacted       = "isContacted"
	FieldRemarks           = "remarks"
	FieldContactDetails    = "contactDetails"
	FieldHR1Details        = "hr1Details"
	FieldHR2Details        = "hr2Details"
	FieldPackage           = "package"
	FieldAssignedOfficerID = "assignedOfficerId"
)

var (
	DriveTypes     = []string{"On-Campus", "Off-Campus", "Virtual", "Pool"}
	FollowUpCycles = []string{"Daily", "Weekly", "Bi-weekly", "Monthly", "None"}
)

// Fields is the record schema in display order.
var Fields = []Field{
	{Name: FieldCompanyName, Label: "Company Name", Kind: KindText, Required: true},
	{Name: FieldCompanyAddress, Label: "Company Address", Kind: KindText, Multiline: true, Required: true},
	{Name: FieldDrive, Label: "Drive", Kind: KindText, Required: true},
	{Name: FieldTypeOfDrive, Label: "Type of Drive", Kind: KindCategorical, Required: true, Options: DriveTypes},
	{Name: FieldFollowUp, Label: "Follow Up", Kind: KindCategorical, Required: true, Options: FollowUpCycles},
	{Name: FieldIsContacted, Label: "Is Contacted", Kind: KindBool},
	{Name: FieldRemarks, Label: "Remarks", Kind: KindText, Multiline: true},
	{Name: FieldContactDetails, Label: "Contact Details", Kind: KindText, Multiline: true, Required: true},
	{Name: FieldHR1Details, Label: "HR1 Details", Kind: KindText, Multiline: true},
	{Name: FieldHR2Details, Label: "HR2 Details", Kind: KindText, Multiline: true},
	{Name: FieldPackage, Label: "Package", Kind: KindText, Required: true},
	{Name: FieldAssignedOfficerID, Label: "Assigned Officer", Kind: KindReference},
}

func Lookup(name string) (Field, bool) {
	for _, field := range Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Label returns the display label for name, or name itself for fields the
// schema no longer knows.
func Label(name string) string {
	if field, ok := Lookup(name); ok {
		return field.Label
	}
	return name
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidateUpdate checks a partial update. Every key must be a known field
// carrying a value of the field's kind.
func ValidateUpdate(fields fieldmap.Map) error {
	if fields.Len() == 0 {
		return &ValidationError{Reason: "no fields to update"}
	}
	for _, entry := range fields.Entries() {
		field, ok := Lookup(entry.Key)
		if !ok {
			return &ValidationError{Field: entry.Key, Reason: "unknown field"}
		}
		if err := checkValue(field, entry.Value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCreate checks a full record: like ValidateUpdate, and every
// required field must be present.
func ValidateCreate(fields fieldmap.Map) error {
	if err := ValidateUpdate(fields); err != nil {
		return err
	}
	for _, field := range Fields {
		if field.Required && !fields.Has(field.Name) {
			return &ValidationError{Field: field.Name, Reason: "is required"}
		}
	}
	return nil
}

func checkValue(field Field, value fieldmap.Value) error {
	switch field.Kind {
	case KindBool:
		if _, ok := value.AsBool(); !ok {
			return &ValidationError{Field: field.Name, Reason: "must be a boolean"}
		}
	case KindReference:
		if value.IsNull() {
			return nil
		}
		if s, ok := value.AsString(); !ok || strings.TrimSpace(s) == "" {
			return &ValidationError{Field: field.Name, Reason: "must be a user id or null"}
		}
	case KindText, KindCategorical:
		s, ok := value.AsString()
		if !ok {
			return &ValidationError{Field: field.Name, Reason: "must be a string"}
		}
		if field.Required && strings.TrimSpace(s) == "" {
			return &ValidationError{Field: field.Name, Reason: "must not be blank"}
		}
		if hasControl(s, field.Multiline) {
			return &ValidationError{Field: field.Name, Reason: "must not contain control characters"}
		}
		if field.Kind == KindCategorical && !lo.Contains(field.Options, s) {
			return &ValidationError{Field: field.Name, Reason: fmt.Sprintf("must be one of %s", strings.Join(field.Options, ", "))}
		}
	}
	return nil
}

func hasControl(s string, multiline bool) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		if multiline && (r == '\n' || r == '\r' || r == '\t') {
			return false
		}
		return unicode.IsControl(r)
	})
}

// Snapshot captures every schema field of item in schema order.
func Snapshot(item store.Company) fieldmap.Map {
	officer := fieldmap.Null()
	if item.AssignedOfficerID != nil {
		officer = fieldmap.String(*item.AssignedOfficerID)
	}
	return fieldmap.FromEntries(
		fieldmap.Entry{Key: FieldCompanyName, Value: fieldmap.String(item.CompanyName)},
		fieldmap.Entry{Key: FieldCompanyAddress, Value: fieldmap.String(item.CompanyAddress)},
		fieldmap.Entry{Key: FieldDrive, Value: fieldmap.String(item.Drive)},
		fieldmap.Entry{Key: FieldTypeOfDrive, Value: fieldmap.String(item.TypeOfDrive)},
		fieldmap.Entry{Key: FieldFollowUp, Value: fieldmap.String(item.FollowUp)},
		fieldmap.Entry{Key: FieldIsContacted, Value: fieldmap.Bool(item.IsContacted)},
		fieldmap.Entry{Key: FieldRemarks, Value: fieldmap.String(item.Remarks)},
		fieldmap.Entry{Key: FieldContactDetails, Value: fieldmap.String(item.ContactDetails)},
		fieldmap.Entry{Key: FieldHR1Details, Value: fieldmap.String(item.HR1Details)},
		fieldmap.Entry{Key: FieldHR2Details, Value: fieldmap.String(item.HR2Details)},
		fieldmap.Entry{Key: FieldPackage, Value: fieldmap.String(item.Package)},
		fieldmap.Entry{Key: FieldAssignedOfficerID, Value: officer},
	)
}

// Apply merges fields onto item. Keys absent from fields are left as they
// are. The map must already have passed ValidateUpdate.
func Apply(item store.Company, fields fieldmap.Map) (store.Company, error) {
	for _, entry := range fields.Entries() {
		if err := applyField(&item, entry.Key, entry.Value); err != nil {
			return store.Company{}, err
		}
	}
	return item, nil
}

func applyField(item *store.Company, name string, value fieldmap.Value) error {
	if name == FieldIsContacted {
		b, ok := value.AsBool()
		if !ok {
			return &ValidationError{Field: name, Reason: "must be a boolean"}
		}
		item.IsContacted = b
		return nil
	}
	if name == FieldAssignedOfficerID {
		if value.IsNull() {
			item.AssignedOfficerID = nil
			item.AssignedOfficerName = ""
			return nil
		}
		s, ok := value.AsString()
		if !ok {
			return &ValidationError{Field: name, Reason: "must be a user id or null"}
		}
		if item.AssignedOfficerID == nil || *item.AssignedOfficerID != s {
			item.AssignedOfficerName = ""
		}
		item.AssignedOfficerID = &s
		return nil
	}

	s, ok := value.AsString()
	if !ok {
		return &ValidationError{Field: name, Reason: "must be a string"}
	}
	switch name {
	case FieldCompanyName:
		item.CompanyName = s
	case FieldCompanyAddress:
		item.CompanyAddress = s
	case FieldDrive:
		item.Drive = s
	case FieldTypeOfDrive:
		item.TypeOfDrive = s
	case FieldFollowUp:
		item.FollowUp = s
	case FieldRemarks:
		item.Remarks = s
	case FieldContactDetails:
		item.ContactDetails = s
	case FieldHR1Details:
		item.HR1Details = s
	case FieldHR2Details:
		item.HR2Details = s
	case FieldPackage:
		item.Package = s
	default:
		return &ValidationError{Field: name, Reason: "unknown field"}
	}
	return nil
}

// AssignedOfficer returns the officer id fields would assign, and whether
// fields set one at all. A null assignment reports ok with an empty id.
func AssignedOfficer(fields fieldmap.Map) (string, bool) {
	value, ok := fields.Get(FieldAssignedOfficerID)
	if !ok {
		return "", false
	}
	s, _ := value.AsString()
	return s, true
}
