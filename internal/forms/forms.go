// Package forms parses and validates submitted wizard step input. Each step
// has an Apply function that checks the posted values and, only when every
// field passes, writes them onto the in-progress application — an invalid
// submission must leave the stored answers untouched.
package forms

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/govuk-domains/domain-request/internal/validation"
	"github.com/govuk-domains/domain-request/internal/wizard"
)

// FieldError binds a message to the form field anchor it belongs to.
// Errors are produced in the form's field order so the error summary is
// stable across submissions.
type FieldError struct {
	Field   string
	Message string
}

const (
	msgSelectOrganisation = "Select your organisation"
	msgEnterFullName      = "Enter your full name"
	msgEnterPhone         = "Enter a telephone number, like 01632 960 001 or 07700 900 982"
	msgEnterEmail         = "Enter an email address in the correct format, like name@example.co.uk"
	msgSelectChoice       = "Please select from one of the choices"
	msgSelectYesNo        = "Select yes or no"
	msgFieldRequired      = "This field is required"
	msgInvalidDomain      = "Please enter a valid domain name"
	msgEnterOrganisation  = "Enter the organisation name"
	msgEnterRoleName      = "Enter the role name"
)

// strict strips any markup from free-text answers before they are stored;
// stored values are later interpolated into summary rows and emails.
var strict = bluemonday.StrictPolicy()

func clean(values url.Values, key string) string {
	return strings.TrimSpace(strict.Sanitize(values.Get(key)))
}

// contactFields validates the shared organisation/name/phone/email block
// used by the registrar-details and registrant-details steps. Field names
// differ between the two forms, the rules do not.
func contactFields(values url.Values, orgField, orgMessage, nameField, phoneField, emailField string) (org, name, phone, email string, errs []FieldError) {
	org = clean(values, orgField)
	name = clean(values, nameField)
	phone = clean(values, phoneField)
	email = clean(values, emailField)

	if org == "" {
		errs = append(errs, FieldError{orgField, orgMessage})
	}
	if name == "" {
		errs = append(errs, FieldError{nameField, msgEnterFullName})
	}
	if !validation.ValidPhone(phone) {
		errs = append(errs, FieldError{phoneField, msgEnterPhone})
	}
	if !validation.ValidEmail(email) {
		errs = append(errs, FieldError{emailField, msgEnterEmail})
	}
	return org, name, phone, email, errs
}

// ApplyRegistrarDetails validates the registrar-details step.
func ApplyRegistrarDetails(app *wizard.Application, values url.Values) []FieldError {
	org, name, phone, email, errs := contactFields(values,
		"registrar_organisation", msgSelectOrganisation,
		"registrar_name", "registrar_phone", "registrar_email")
	if len(errs) > 0 {
		return errs
	}
	app.RegistrarOrg = org
	app.RegistrarName = name
	app.RegistrarPhone = phone
	app.RegistrarEmail = email
	return nil
}

// ApplyRegistrantType validates the registrant-type step.
func ApplyRegistrantType(app *wizard.Application, values url.Values) []FieldError {
	t := wizard.RegistrantType(values.Get("registrant_type"))
	if !t.Valid() {
		return []FieldError{{"registrant_type", msgSelectChoice}}
	}
	app.RegistrantType = t
	return nil
}

// ApplyDomainPurpose validates the domain-purpose step.
func ApplyDomainPurpose(app *wizard.Application, values url.Values) []FieldError {
	p := wizard.DomainPurpose(values.Get("domain_purpose"))
	if !p.Valid() {
		return []FieldError{{"domain_purpose", msgSelectChoice}}
	}
	app.DomainPurpose = p
	return nil
}

// ApplyYesNo validates one of the yes/no steps (exemption, written
// permission, domain confirmation, minister). The field name matches the
// step's radio group.
func ApplyYesNo(field string, values url.Values) (wizard.YesNo, []FieldError) {
	v := wizard.YesNo(values.Get(field))
	if v != wizard.Yes && v != wizard.No {
		return "", []FieldError{{field, msgSelectYesNo}}
	}
	return v, nil
}

// ApplyDomain validates the domain step. The answer is normalized before
// validation: an optional trailing .gov.uk is stripped and the label is
// lowercased, so normalization is idempotent. Submitting a new name clears
// any earlier confirmation answer.
func ApplyDomain(app *wizard.Application, values url.Values) []FieldError {
	raw := strings.TrimSpace(values.Get("domain_name"))
	if raw == "" {
		return []FieldError{{"domain_name", msgFieldRequired}}
	}
	label := validation.NormalizeDomain(raw)
	if !validation.ValidDomainLabel(label) {
		return []FieldError{{"domain_name", msgInvalidDomain}}
	}
	app.DomainName = validation.FullDomain(label)
	app.DomainConfirmation = ""
	return nil
}

// ApplyRegistrantDetails validates the registrant-details step.
func ApplyRegistrantDetails(app *wizard.Application, values url.Values) []FieldError {
	org, name, phone, email, errs := contactFields(values,
		"registrant_organisation", msgEnterOrganisation,
		"registrant_full_name", "registrant_phone", "registrant_email")
	if len(errs) > 0 {
		return errs
	}
	app.RegistrantOrg = org
	app.RegistrantFullName = name
	app.RegistrantPhone = phone
	app.RegistrantEmail = email
	return nil
}

// ApplyRegistryDetails validates the registry-details step.
func ApplyRegistryDetails(app *wizard.Application, values url.Values) []FieldError {
	role := clean(values, "registrant_role")
	email := clean(values, "registrant_contact_email")

	var errs []FieldError
	if role == "" {
		errs = append(errs, FieldError{"registrant_role", msgEnterRoleName})
	}
	if !validation.ValidEmail(email) {
		errs = append(errs, FieldError{"registrant_contact_email", msgEnterEmail})
	}
	if len(errs) > 0 {
		return errs
	}
	app.RegistrantRole = role
	app.RegistrantContactEmail = email
	return nil
}
