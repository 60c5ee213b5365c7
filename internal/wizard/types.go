package wizard

import "time"

// RegistrantType identifies the kind of organisation the domain is for.
// The value set mirrors the radio options on the registrant-type step.
type RegistrantType string

const (
	RegistrantCentralGov        RegistrantType = "central-government"
	RegistrantALB               RegistrantType = "alb"
	RegistrantFireService       RegistrantType = "fire-service"
	RegistrantCountyCouncil     RegistrantType = "county-council"
	RegistrantParishCouncil     RegistrantType = "parish-council"
	RegistrantVillageCouncil    RegistrantType = "village-council"
	RegistrantCombinedAuthority RegistrantType = "combined-authority"
	RegistrantPCC               RegistrantType = "pcc"
	RegistrantJointAuthority    RegistrantType = "joint-authority"
	RegistrantJointCommittee    RegistrantType = "joint-committee"
	RegistrantRepresentingPSB   RegistrantType = "representing-psb"
	// Not offered on the registrant-type form, but accepted by the
	// resolver for applications recorded through other channels.
	RegistrantRepresentingProfession RegistrantType = "representing-profession"
	RegistrantNone                   RegistrantType = "none"
)

// RegistrantTypeLabels maps type values to the text shown on the form and on
// the answers page, in display order.
var RegistrantTypeLabels = []struct {
	Value RegistrantType
	Label string
}{
	{RegistrantCentralGov, "Central government department or agency"},
	{RegistrantALB, "Non-departmental body - also known as an arm's length body"},
	{RegistrantFireService, "Fire service"},
	{RegistrantCountyCouncil, "County, borough, metropolitan or district council"},
	{RegistrantParishCouncil, "Parish, town or community council"},
	{RegistrantVillageCouncil, "Neighbourhood or village council"},
	{RegistrantCombinedAuthority, "Combined or unitary authority"},
	{RegistrantPCC, "Police and crime commissioner"},
	{RegistrantJointAuthority, "Joint authority"},
	{RegistrantJointCommittee, "Joint committee"},
	{RegistrantRepresentingPSB, "Representing public sector bodies"},
	{RegistrantNone, "None of the above"},
}

// Label returns the display text for a registrant type.
func (t RegistrantType) Label() string {
	for _, e := range RegistrantTypeLabels {
		if e.Value == t {
			return e.Label
		}
	}
	return string(t)
}

// Valid reports whether t is one of the known choices.
func (t RegistrantType) Valid() bool {
	for _, e := range RegistrantTypeLabels {
		if e.Value == t {
			return true
		}
	}
	return false
}

// DomainPurpose is why the registrant wants the domain. Only asked on
// route 2 (central government and arm's length bodies).
type DomainPurpose string

const (
	PurposeWebsiteEmail DomainPurpose = "website-email"
	PurposeEmailOnly    DomainPurpose = "email-only"
	PurposeAPIOnly      DomainPurpose = "api-only"
)

// DomainPurposeLabels maps purpose values to display text, in display order.
var DomainPurposeLabels = []struct {
	Value DomainPurpose
	Label string
}{
	{PurposeWebsiteEmail, "Website (may include email)"},
	{PurposeEmailOnly, "Email only"},
	{PurposeAPIOnly, "API only"},
}

// Label returns the display text for a domain purpose.
func (p DomainPurpose) Label() string {
	for _, e := range DomainPurposeLabels {
		if e.Value == p {
			return e.Label
		}
	}
	return string(p)
}

// Valid reports whether p is one of the known choices.
func (p DomainPurpose) Valid() bool {
	for _, e := range DomainPurposeLabels {
		if e.Value == p {
			return true
		}
	}
	return false
}

// YesNo is a radio answer. Empty string means not yet answered.
type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

// EvidenceSlot identifies one of the three upload points in the flow.
type EvidenceSlot string

const (
	SlotExemption  EvidenceSlot = "exemption"
	SlotPermission EvidenceSlot = "written-permission"
	SlotMinister   EvidenceSlot = "minister"
)

// Evidence describes one uploaded file attached to an evidence slot. The
// content itself lives in the storage backend under StoredName.
type Evidence struct {
	OriginalFilename string    `json:"original_filename"`
	StoredName       string    `json:"stored_name"`
	Size             int64     `json:"size"`
	ContentType      string    `json:"content_type"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// Application is the in-progress set of answers collected before final
// confirmation. One lives per session; step submissions mutate it and the
// submission finalizer freezes it into a repository record.
type Application struct {
	// Registrar details
	RegistrarOrg   string `json:"registrar_org"`
	RegistrarName  string `json:"registrar_name"`
	RegistrarPhone string `json:"registrar_phone"`
	RegistrarEmail string `json:"registrar_email"`

	RegistrantType RegistrantType `json:"registrant_type"`
	DomainPurpose  DomainPurpose  `json:"domain_purpose"`

	Exemption         YesNo     `json:"exemption"`
	ExemptionEvidence *Evidence `json:"exemption_evidence,omitempty"`

	WrittenPermission  YesNo     `json:"written_permission"`
	PermissionEvidence *Evidence `json:"permission_evidence,omitempty"`

	DomainName         string `json:"domain_name"`
	DomainConfirmation YesNo  `json:"domain_confirmation"`

	Minister         YesNo     `json:"minister"`
	MinisterEvidence *Evidence `json:"minister_evidence,omitempty"`

	// Registrant contact details
	RegistrantOrg      string `json:"registrant_org"`
	RegistrantFullName string `json:"registrant_full_name"`
	RegistrantPhone    string `json:"registrant_phone"`
	RegistrantEmail    string `json:"registrant_email"`

	// Details published to the registry
	RegistrantRole         string `json:"registrant_role"`
	RegistrantContactEmail string `json:"registrant_contact_email"`
}

// EvidenceFor returns the evidence stored in the given slot, or nil.
func (a *Application) EvidenceFor(slot EvidenceSlot) *Evidence {
	switch slot {
	case SlotExemption:
		return a.ExemptionEvidence
	case SlotPermission:
		return a.PermissionEvidence
	case SlotMinister:
		return a.MinisterEvidence
	}
	return nil
}

// SetEvidence stores (or clears, with nil) the evidence for a slot.
func (a *Application) SetEvidence(slot EvidenceSlot, ev *Evidence) {
	switch slot {
	case SlotExemption:
		a.ExemptionEvidence = ev
	case SlotPermission:
		a.PermissionEvidence = ev
	case SlotMinister:
		a.MinisterEvidence = ev
	}
}
