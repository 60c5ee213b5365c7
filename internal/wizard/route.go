package wizard

// Route is the resolved branch of the wizard. Primary is decided by the
// registrant type, Secondary refines it from later answers (domain purpose,
// domain confirmation), Tertiary captures the final yes/no splits. A zero
// leg means "not decided yet".
//
// Observed legs:
//
//	Primary 1  parish/village councils
//	Primary 2  central government / arm's length bodies
//	Primary 3  local authorities, fire services and similar
//	Primary 4  ineligible registrant (terminal)
//	Secondary 5  purpose = email only
//	Secondary 6  purpose = anything else (terminal)
//	Secondary 7  purpose = website
//	Secondary 10 route 3 without written permission (terminal)
//	Secondary 12 domain confirmation answered "no"
//	Tertiary 8   no minister request
//	Tertiary 9   route 6 without written permission
type Route struct {
	Primary   int
	Secondary int
	Tertiary  int
}

// centralGovTypes and permissionOnlyTypes partition the eligible registrant
// types that are not community councils. Central government and ALBs must
// follow the identical downstream sequence, as must every permission-only
// type; the resolver never distinguishes within a group.
var (
	communityCouncilTypes = map[RegistrantType]bool{
		RegistrantParishCouncil:  true,
		RegistrantVillageCouncil: true,
	}
	centralGovTypes = map[RegistrantType]bool{
		RegistrantCentralGov: true,
		RegistrantALB:        true,
	}
	permissionOnlyTypes = map[RegistrantType]bool{
		RegistrantFireService:            true,
		RegistrantCountyCouncil:          true,
		RegistrantCombinedAuthority:      true,
		RegistrantPCC:                    true,
		RegistrantJointAuthority:         true,
		RegistrantJointCommittee:         true,
		RegistrantRepresentingPSB:        true,
		RegistrantRepresentingProfession: true,
	}
)

// IsCentralGovernment reports whether the registrant type follows the
// central-government branch (which includes arm's length bodies).
func IsCentralGovernment(t RegistrantType) bool {
	return centralGovTypes[t]
}

// Resolve computes the route from the answers accumulated so far. It is a
// pure function: routes are never stored, only derived.
func Resolve(app *Application) Route {
	var r Route
	if app == nil || app.RegistrantType == "" {
		return r
	}

	switch {
	case communityCouncilTypes[app.RegistrantType]:
		r.Primary = 1
		if app.DomainConfirmation == No {
			r.Secondary = 12
		}

	case centralGovTypes[app.RegistrantType]:
		r.Primary = 2
		if app.DomainPurpose != "" {
			switch app.DomainPurpose {
			case PurposeEmailOnly:
				r.Secondary = 5
			case PurposeWebsiteEmail:
				r.Secondary = 7
			default:
				r.Secondary = 6
				if app.WrittenPermission == No {
					r.Tertiary = 9
				}
			}
		}
		if app.Minister == No {
			r.Tertiary = 8
		}

	case permissionOnlyTypes[app.RegistrantType]:
		r.Primary = 3
		if app.WrittenPermission == No {
			r.Secondary = 10
		}

	default:
		r.Primary = 4
	}

	return r
}
