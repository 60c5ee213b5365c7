package wizard

import "fmt"

// SummaryRow is one entry on the answers page. Values holds one string per
// line; ChangeURL is empty when the row offers no change link.
type SummaryRow struct {
	Key       string
	Values    []string
	ChangeURL string
}

// evidenceValue renders an evidence answer the way the answers page and the
// confirmation emails word it.
func evidenceValue(answer YesNo, ev *Evidence) string {
	if answer == Yes && ev != nil {
		return fmt.Sprintf("Yes, evidence provided: %s", ev.OriginalFilename)
	}
	return "No evidence provided"
}

// Summary returns the answers-page rows in display order. Presence and
// order are a pure function of the resolved route: rows for steps the route
// never asks about are omitted entirely, not rendered empty.
func Summary(app *Application) []SummaryRow {
	r := Resolve(app)
	rows := []SummaryRow{
		{
			Key:       "Registrar organisation",
			Values:    []string{app.RegistrarOrg},
			ChangeURL: "/change-registrar-details/",
		},
		{
			Key:       "Registrar details",
			Values:    []string{app.RegistrarName, app.RegistrarPhone, app.RegistrarEmail},
			ChangeURL: "/change-email/",
		},
		{
			Key:       "Registrant type",
			Values:    []string{app.RegistrantType.Label()},
			ChangeURL: "/registrant-type/?change",
		},
	}

	if r.Primary == 2 {
		rows = append(rows, SummaryRow{
			Key:       "Reason for request",
			Values:    []string{app.DomainPurpose.Label()},
			ChangeURL: "/domain-purpose/?change",
		})
	}
	if r.Primary == 2 && r.Secondary == 7 {
		rows = append(rows, SummaryRow{
			Key:       "Exemption",
			Values:    []string{evidenceValue(app.Exemption, app.ExemptionEvidence)},
			ChangeURL: "/exemption/?change",
		})
	}
	if r.Primary == 3 || r.Secondary == 5 || r.Secondary == 7 {
		rows = append(rows, SummaryRow{
			Key:       "Permission",
			Values:    []string{evidenceValue(app.WrittenPermission, app.PermissionEvidence)},
			ChangeURL: "/change-written-permission/",
		})
	}
	if r.Secondary == 5 || r.Secondary == 7 {
		rows = append(rows, SummaryRow{
			Key:       "Minister",
			Values:    []string{evidenceValue(app.Minister, app.MinisterEvidence)},
			ChangeURL: "/minister/?change",
		})
	}

	rows = append(rows,
		SummaryRow{
			Key:       "Domain name",
			Values:    []string{app.DomainName},
			ChangeURL: "/change-domain/",
		},
		SummaryRow{
			Key:       "Registrant organisation",
			Values:    []string{app.RegistrantOrg},
			ChangeURL: "/change-registrant-details/",
		},
		SummaryRow{
			Key:       "Registrant details",
			Values:    []string{app.RegistrantFullName, app.RegistrantPhone, app.RegistrantEmail},
			ChangeURL: "/change-registrant-details/",
		},
		SummaryRow{
			Key:       "Registry details",
			Values:    []string{app.RegistrantRole, app.RegistrantContactEmail},
			ChangeURL: "/change-registry-details/",
		},
	)

	return rows
}
