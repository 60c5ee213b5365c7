package wizard

// StepID names a wizard step. Values double as URL path segments.
type StepID string

const (
	StepRegistrarDetails            StepID = "registrar-details"
	StepRegistrantType              StepID = "registrant-type"
	StepDomainPurpose               StepID = "domain-purpose"
	StepExemption                   StepID = "exemption"
	StepExemptionUpload             StepID = "exemption-upload"
	StepExemptionUploadConfirm      StepID = "exemption-upload-confirm"
	StepWrittenPermission           StepID = "written-permission"
	StepWrittenPermissionUpload     StepID = "written-permission-upload"
	StepWrittenPermissionUploadConf StepID = "written-permission-upload-confirm"
	StepDomain                      StepID = "domain"
	StepDomainConfirmation          StepID = "domain-confirmation"
	StepMinister                    StepID = "minister"
	StepMinisterUpload              StepID = "minister-upload"
	StepMinisterUploadConfirm       StepID = "minister-upload-confirm"
	StepRegistrantDetails           StepID = "registrant-details"
	StepRegistryDetails             StepID = "registry-details"
	StepConfirm                     StepID = "confirm"
	StepSuccess                     StepID = "success"

	// Terminal rejection pages. They end the flow; Next never leaves them.
	StepRegistrantTypeFail    StepID = "registrant-type-fail"
	StepDomainPurposeFail     StepID = "domain-purpose-fail"
	StepExemptionFail         StepID = "exemption-fail"
	StepWrittenPermissionFail StepID = "written-permission-fail"
)

// Path returns the URL path for the step.
func (s StepID) Path() string {
	return "/" + string(s) + "/"
}

// Terminal reports whether the step ends the flow without an application.
func (s StepID) Terminal() bool {
	switch s {
	case StepRegistrantTypeFail, StepDomainPurposeFail, StepExemptionFail, StepWrittenPermissionFail:
		return true
	}
	return false
}

// Next returns the step that follows s given the answers collected so far.
// The wizard is an explicit graph: each node's successor is a function of
// the resolved route, never of how the user got there.
func Next(s StepID, app *Application) StepID {
	r := Resolve(app)

	switch s {
	case StepRegistrarDetails:
		return StepRegistrantType

	case StepRegistrantType:
		switch r.Primary {
		case 1:
			return StepDomain
		case 2:
			return StepDomainPurpose
		case 3:
			return StepWrittenPermission
		default:
			return StepRegistrantTypeFail
		}

	case StepDomainPurpose:
		switch r.Secondary {
		case 7:
			return StepExemption
		case 5:
			return StepWrittenPermission
		default:
			return StepDomainPurposeFail
		}

	case StepExemption:
		if app.Exemption == Yes {
			return StepExemptionUpload
		}
		return StepExemptionFail

	case StepExemptionUpload:
		return StepExemptionUploadConfirm

	case StepExemptionUploadConfirm:
		return StepWrittenPermission

	case StepWrittenPermission:
		if app.WrittenPermission == Yes {
			return StepWrittenPermissionUpload
		}
		return StepWrittenPermissionFail

	case StepWrittenPermissionUpload:
		return StepWrittenPermissionUploadConf

	case StepWrittenPermissionUploadConf:
		return StepDomain

	case StepDomain:
		return StepDomainConfirmation

	case StepDomainConfirmation:
		if app.DomainConfirmation == No {
			return StepDomain
		}
		if r.Secondary == 5 || r.Secondary == 7 {
			return StepMinister
		}
		return StepRegistrantDetails

	case StepMinister:
		if app.Minister == Yes {
			return StepMinisterUpload
		}
		return StepRegistrantDetails

	case StepMinisterUpload:
		return StepMinisterUploadConfirm

	case StepMinisterUploadConfirm:
		return StepRegistrantDetails

	case StepRegistrantDetails:
		return StepRegistryDetails

	case StepRegistryDetails:
		return StepConfirm

	case StepConfirm:
		return StepSuccess
	}

	return s
}

// complete reports whether the answers a step collects are on file. Upload
// confirm steps are complete once the slot holds evidence; terminal pages
// collect nothing.
func complete(s StepID, app *Application) bool {
	switch s {
	case StepRegistrarDetails:
		return app.RegistrarOrg != "" && app.RegistrarName != "" &&
			app.RegistrarPhone != "" && app.RegistrarEmail != ""
	case StepRegistrantType:
		return app.RegistrantType != ""
	case StepDomainPurpose:
		return app.DomainPurpose != ""
	case StepExemption:
		return app.Exemption != ""
	case StepExemptionUpload, StepExemptionUploadConfirm:
		return app.ExemptionEvidence != nil
	case StepWrittenPermission:
		return app.WrittenPermission != ""
	case StepWrittenPermissionUpload, StepWrittenPermissionUploadConf:
		return app.PermissionEvidence != nil
	case StepDomain:
		return app.DomainName != ""
	case StepDomainConfirmation:
		return app.DomainConfirmation == Yes
	case StepMinister:
		return app.Minister != ""
	case StepMinisterUpload, StepMinisterUploadConfirm:
		return app.MinisterEvidence != nil
	case StepRegistrantDetails:
		return app.RegistrantOrg != "" && app.RegistrantFullName != "" &&
			app.RegistrantPhone != "" && app.RegistrantEmail != ""
	case StepRegistryDetails:
		return app.RegistrantRole != "" && app.RegistrantContactEmail != ""
	}
	return true
}

// Sequence walks the graph from the first step using the current answers
// and returns the step order the route requires, ending either at the first
// incomplete step, a terminal page, or the confirm step. The walk is bounded
// by the step count so a confirmation loop (route 12) cannot spin.
func Sequence(app *Application) []StepID {
	var seq []StepID
	s := StepRegistrarDetails
	for i := 0; i < 32; i++ {
		seq = append(seq, s)
		if s == StepConfirm || s.Terminal() || !complete(s, app) {
			return seq
		}
		n := Next(s, app)
		if n == s {
			return seq
		}
		s = n
	}
	return seq
}

// Accessible reports whether the session may visit the step: every earlier
// step the route requires must be complete. Requesting anything else is a
// sequence violation, answered with a hard client error rather than a
// redirect.
func Accessible(s StepID, app *Application) bool {
	for _, id := range Sequence(app) {
		if id == s {
			return true
		}
		if !complete(id, app) {
			return false
		}
	}
	return false
}

// Previous returns the step before s in the current sequence, used for the
// back link. The entry page is its own predecessor.
func Previous(s StepID, app *Application) StepID {
	seq := Sequence(app)
	for i, id := range seq {
		if id == s && i > 0 {
			return seq[i-1]
		}
	}
	return StepRegistrarDetails
}
