package api

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/govuk-domains/domain-request/internal/forms"
	"github.com/govuk-domains/domain-request/internal/middleware"
	"github.com/govuk-domains/domain-request/internal/wizard"
)

// applyFunc validates one step's posted values and, when valid, writes
// them onto the application.
type applyFunc func(*wizard.Application, url.Values) []forms.FieldError

func applyYesNo(field string, set func(*wizard.Application, wizard.YesNo)) applyFunc {
	return func(app *wizard.Application, values url.Values) []forms.FieldError {
		v, errs := forms.ApplyYesNo(field, values)
		if len(errs) > 0 {
			return errs
		}
		set(app, v)
		return nil
	}
}

// stepPage describes one form step: its page title and the validator that
// commits its answers.
type stepPage struct {
	title string
	apply applyFunc
}

var stepPages = map[wizard.StepID]stepPage{
	wizard.StepRegistrarDetails: {
		title: "Registrar details",
		apply: forms.ApplyRegistrarDetails,
	},
	wizard.StepRegistrantType: {
		title: "Who is this domain name for?",
		apply: forms.ApplyRegistrantType,
	},
	wizard.StepDomainPurpose: {
		title: "Why do you want a .gov.uk domain name?",
		apply: forms.ApplyDomainPurpose,
	},
	wizard.StepExemption: {
		title: "Does your registrant have an exemption from using the GOV.UK website?",
		apply: applyYesNo("exemption", func(a *wizard.Application, v wizard.YesNo) { a.Exemption = v }),
	},
	wizard.StepWrittenPermission: {
		title: "Does your registrant have proof of permission to apply for a .gov.uk domain name?",
		apply: applyYesNo("written_permission", func(a *wizard.Application, v wizard.YesNo) { a.WrittenPermission = v }),
	},
	wizard.StepDomain: {
		title: "What .gov.uk domain name do you want?",
		apply: forms.ApplyDomain,
	},
	wizard.StepDomainConfirmation: {
		title: "Is this the correct domain name?",
		apply: applyYesNo("domain_confirmation", func(a *wizard.Application, v wizard.YesNo) { a.DomainConfirmation = v }),
	},
	wizard.StepMinister: {
		title: "Has a central government minister requested this domain name?",
		apply: applyYesNo("minister", func(a *wizard.Application, v wizard.YesNo) { a.Minister = v }),
	},
	wizard.StepRegistrantDetails: {
		title: "Registrant details",
		apply: forms.ApplyRegistrantDetails,
	},
	wizard.StepRegistryDetails: {
		title: "Registrant details for the public registry",
		apply: forms.ApplyRegistryDetails,
	},
}

// withChangeMode marks the request as an answers-page edit before the step
// handler runs. The change-* aliases use it; plain steps read ?change.
func withChangeMode(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("change_mode", true)
		h(c)
	}
}

func changeMode(c *gin.Context) bool {
	if c.GetBool("change_mode") {
		return true
	}
	_, ok := c.GetQuery("change")
	return ok
}

// renderStep draws a step form, prefilled from the session's answers.
func (s *Server) renderStep(c *gin.Context, id wizard.StepID, app *wizard.Application, errs []forms.FieldError) {
	page := stepPages[id]
	change := changeMode(c)

	token, err := s.csrf.Issue(middleware.Record(c).ID)
	if err != nil {
		s.serverError(c, err)
		return
	}

	back := wizard.Previous(id, app).Path()
	if change {
		back = "/confirm/"
	}

	s.html(c, http.StatusOK, "steps/"+string(id)+".html", gin.H{
		"title":                 page.title,
		"step":                  string(id),
		"app":                   app,
		"errors":                errs,
		"has_errors":            len(errs) > 0,
		"back":                  back,
		"csrf_token":            token,
		"change":                change,
		"offer_back_to_answers": change && id != wizard.StepRegistrantType,
		"registrant_types":      wizard.RegistrantTypeLabels,
		"domain_purposes":       wizard.DomainPurposeLabels,
		"registrars":            s.cfg.App.Registrars,
	})
}

// handleStepGET returns the GET handler for a form step.
func (s *Server) handleStepGET(id wizard.StepID) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := middleware.Record(c)
		app := &rec.Application
		if !wizard.Accessible(id, app) {
			s.invalidRequest(c)
			return
		}
		s.renderStep(c, id, app, nil)
	}
}

// handleStepPOST returns the POST handler for a form step. Valid input is
// persisted atomically and the browser moves on; invalid input redisplays
// the form with the error summary and changes nothing.
func (s *Server) handleStepPOST(id wizard.StepID) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := middleware.Record(c)
		app := &rec.Application
		if !wizard.Accessible(id, app) {
			s.invalidRequest(c)
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			s.invalidRequest(c)
			return
		}

		errs := stepPages[id].apply(app, c.Request.PostForm)
		if len(errs) == 0 && id == wizard.StepRegistrarDetails {
			errs = s.checkRegistrarChoice(app.RegistrarOrg)
		}
		if len(errs) > 0 {
			s.metrics.ValidationFailures.WithLabelValues(string(id)).Inc()
			s.renderStep(c, id, app, errs)
			return
		}
		if err := s.store.Put(c.Request.Context(), rec); err != nil {
			s.serverError(c, err)
			return
		}

		if changeMode(c) && c.PostForm("action") == "back-to-answers" &&
			id != wizard.StepRegistrantType && wizard.Accessible(wizard.StepConfirm, app) {
			c.Redirect(http.StatusFound, "/confirm/")
			return
		}
		c.Redirect(http.StatusFound, wizard.Next(id, app).Path())
	}
}

// checkRegistrarChoice enforces the configured registrar list. With no
// list configured the organisation is free text.
func (s *Server) checkRegistrarChoice(org string) []forms.FieldError {
	allowed := s.cfg.App.Registrars
	if len(allowed) == 0 {
		return nil
	}
	for _, a := range allowed {
		if a == org {
			return nil
		}
	}
	return []forms.FieldError{{Field: "registrar_organisation", Message: "Select your organisation"}}
}

// failPage is one of the terminal rejection pages.
type failPage struct {
	title string
	body  string
}

var failPages = map[wizard.StepID]failPage{
	wizard.StepRegistrantTypeFail: {
		title: "Your organisation is not eligible for a .gov.uk domain name",
		body:  "Only public sector organisations in England can have a .gov.uk domain name.",
	},
	wizard.StepDomainPurposeFail: {
		title: "Your registrant is not eligible for a .gov.uk domain name",
		body:  "A .gov.uk domain name can only be used for a website or email.",
	},
	wizard.StepExemptionFail: {
		title: "Your registrant is not eligible for a .gov.uk domain name",
		body:  "Central government departments without an exemption must use GOV.UK for their websites.",
	},
	wizard.StepWrittenPermissionFail: {
		title: "You cannot continue with this application",
		body:  "Your registrant must get written permission before you apply.",
	},
}

// handleFailGET renders a terminal rejection page. The written-permission
// copy names the signatory the registrant actually needs: chief executive
// for local bodies, chief information officer for central government.
func (s *Server) handleFailGET(id wizard.StepID) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := middleware.Record(c)
		page := failPages[id]

		signatory := ""
		if id == wizard.StepWrittenPermissionFail {
			signatory = "chief executive"
			if wizard.IsCentralGovernment(rec.Application.RegistrantType) {
				signatory = "chief information officer"
			}
		}

		s.html(c, http.StatusOK, "fail.html", gin.H{
			"title":     page.title,
			"body":      page.body,
			"signatory": signatory,
		})
	}
}
