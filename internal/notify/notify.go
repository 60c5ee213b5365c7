// Package notify sends the confirmation email that follows a successful
// submission, through a GOV.UK Notify compatible API. The template used
// depends on which legs of the wizard the applicant travelled, so the
// personalisation each template needs is always present.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/govuk-domains/domain-request/internal/wizard"
)

const defaultBaseURL = "https://api.notifications.service.gov.uk"

// Sender delivers one confirmation email.
type Sender interface {
	SendConfirmation(ctx context.Context, app *wizard.Application, reference string) error
}

// Personalisation is the template substitution map.
type Personalisation map[string]string

// TemplateFor picks the confirmation template from the applicant's route.
// Routes 1 and 3 each have a single template; route 2's evidence legs
// differ enough that the secondary leg gets its own.
func TemplateFor(route wizard.Route) string {
	switch route.Primary {
	case 2:
		if route.Secondary == 7 {
			return "confirmation-2-7"
		}
		return "confirmation-2-5"
	case 3:
		return "confirmation-3"
	}
	return "confirmation-1"
}

// Personalise builds the substitution map for a submitted application.
func Personalise(app *wizard.Application, reference string) Personalisation {
	p := Personalisation{
		"reference":               reference,
		"domain_name":             app.DomainName,
		"registrar_name":          app.RegistrarName,
		"registrant_organisation": app.RegistrantOrg,
	}
	for _, slot := range []wizard.EvidenceSlot{wizard.SlotExemption, wizard.SlotPermission, wizard.SlotMinister} {
		if ev := app.EvidenceFor(slot); ev != nil {
			p[strings.ReplaceAll(string(slot), "-", "_")+"_file"] = ev.OriginalFilename
		}
	}
	return p
}

// Client talks to the Notify REST API.
type Client struct {
	baseURL   string
	serviceID string
	secretKey string
	templates map[string]string
	http      *http.Client
}

// NewClient parses a Notify API key. Keys have the form
// <name>-<service uuid (36)>-<secret uuid (36)>.
func NewClient(apiKey string, templates map[string]string) (*Client, error) {
	if len(apiKey) < 74 {
		return nil, fmt.Errorf("notify: API key too short")
	}
	return &Client{
		baseURL:   defaultBaseURL,
		serviceID: apiKey[len(apiKey)-73 : len(apiKey)-37],
		secretKey: apiKey[len(apiKey)-36:],
		templates: templates,
		http:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// WithBaseURL redirects the client, for tests and fake-Notify environments.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

func (c *Client) token() (string, error) {
	claims := jwt.MapClaims{
		"iss": c.serviceID,
		"iat": time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.secretKey))
}

type emailRequest struct {
	EmailAddress    string          `json:"email_address"`
	TemplateID      string          `json:"template_id"`
	Personalisation Personalisation `json:"personalisation"`
	Reference       string          `json:"reference"`
}

func (c *Client) SendConfirmation(ctx context.Context, app *wizard.Application, reference string) error {
	name := TemplateFor(wizard.Resolve(app))
	templateID, ok := c.templates[name]
	if !ok {
		return fmt.Errorf("notify: no template ID configured for %s", name)
	}

	body, err := json.Marshal(emailRequest{
		EmailAddress:    app.RegistrarEmail,
		TemplateID:      templateID,
		Personalisation: Personalise(app, reference),
		Reference:       reference,
	})
	if err != nil {
		return fmt.Errorf("notify: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/notifications/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	tok, err := c.token()
	if err != nil {
		return fmt.Errorf("notify: sign token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("notify: API returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// Noop drops emails, for environments with no Notify credentials.
type Noop struct{}

func (Noop) SendConfirmation(context.Context, *wizard.Application, string) error { return nil }
