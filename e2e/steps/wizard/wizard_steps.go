package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string) error
	LastStatus() int
	GetResponseField(field string) (interface{}, error)
	Set(key, value string)
	Get(key string) string
}

const (
	keySession    = "session_id"
	keyPhone      = "phone"
	keyRegistered = "registered_phone"
	keyVehicle    = "first_vehicle"
)

// RegisterSteps registers registration wizard step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &wizardSteps{tc: tc}

	ctx.Step(`^I start a new wizard session$`, steps.startSession)
	ctx.Step(`^I resume the wizard session$`, steps.resumeSession)
	ctx.Step(`^I view the wizard session$`, steps.viewSession)

	ctx.Step(`^I continue step one with a fresh phone number$`, steps.continueWithFreshPhone)
	ctx.Step(`^I continue step one with the registered phone number$`, steps.continueWithRegisteredPhone)
	ctx.Step(`^I continue step one without contact details$`, steps.continueWithoutContact)
	ctx.Step(`^I continue step one as a business without a license$`, steps.continueBusinessWithoutLicense)
	ctx.Step(`^I remember the phone number as registered$`, steps.rememberRegistered)

	ctx.Step(`^I go back to step one$`, steps.goBack)
	ctx.Step(`^I select the vehicle "([^"]*)"$`, steps.selectVehicle)
	ctx.Step(`^I submit step two with quantity (\d+)$`, steps.submitWithQuantity)
	ctx.Step(`^I submit step two without agreeing to terms$`, steps.submitWithoutTerms)
}

type wizardSteps struct {
	tc TestContext
}

func (s *wizardSteps) base() string {
	return "/wizard/sessions/" + s.tc.Get(keySession)
}

func (s *wizardSteps) startSession(_ context.Context) error {
	if err := s.tc.POST("/wizard/sessions", nil); err != nil {
		return err
	}
	return s.captureSession()
}

func (s *wizardSteps) resumeSession(_ context.Context) error {
	return s.tc.POST("/wizard/sessions", map[string]string{"sessionId": s.tc.Get(keySession)})
}

func (s *wizardSteps) viewSession(_ context.Context) error {
	return s.tc.GET(s.base())
}

func (s *wizardSteps) captureSession() error {
	sessionID, err := s.tc.GetResponseField("sessionId")
	if err != nil {
		return err
	}
	s.tc.Set(keySession, fmt.Sprint(sessionID))

	catalog, err := s.tc.GetResponseField("catalog")
	if err != nil {
		return err
	}
	entries, ok := catalog.([]interface{})
	if !ok || len(entries) == 0 {
		return fmt.Errorf("session has an empty catalog")
	}
	first, ok := entries[0].(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected catalog entry %v", entries[0])
	}
	s.tc.Set(keyVehicle, fmt.Sprint(first["name"]))
	return nil
}

func identity(phone, email string) map[string]interface{} {
	return map[string]interface{}{
		"fullName":           "Abebe Kebede",
		"fatherName":         "Kebede",
		"region":             "Oromia",
		"city":               "Adama",
		"woredaKebele":       "Kebele 04",
		"primaryPhoneNumber": phone,
		"emailAddress":       email,
	}
}

// freshPhone returns a ten digit number unlikely to be registered already.
func freshPhone() string {
	return fmt.Sprintf("09%08d", time.Now().UnixNano()%100000000)
}

func (s *wizardSteps) continueWithFreshPhone(_ context.Context) error {
	phone := freshPhone()
	s.tc.Set(keyPhone, phone)
	return s.tc.POST(s.base()+"/identity", identity(phone, ""))
}

func (s *wizardSteps) rememberRegistered(_ context.Context) error {
	s.tc.Set(keyRegistered, s.tc.Get(keyPhone))
	return nil
}

func (s *wizardSteps) continueWithRegisteredPhone(_ context.Context) error {
	phone := s.tc.Get(keyRegistered)
	if phone == "" {
		return fmt.Errorf("no phone number was registered earlier in this scenario")
	}
	return s.tc.POST(s.base()+"/identity", identity(phone, ""))
}

func (s *wizardSteps) continueWithoutContact(_ context.Context) error {
	return s.tc.POST(s.base()+"/identity", identity("", ""))
}

func (s *wizardSteps) continueBusinessWithoutLicense(_ context.Context) error {
	body := identity(freshPhone(), "")
	body["isBusiness"] = true
	body["tin"] = "0012345678"
	return s.tc.POST(s.base()+"/identity", body)
}

func (s *wizardSteps) goBack(_ context.Context) error {
	return s.tc.POST(s.base()+"/back", nil)
}

func (s *wizardSteps) selectVehicle(_ context.Context, name string) error {
	return s.tc.POST(s.base()+"/vehicle/select", map[string]string{"name": name})
}

func (s *wizardSteps) vehicleForm(quantity int, agreed bool) map[string]interface{} {
	return map[string]interface{}{
		"preferredVehicleType": s.tc.Get(keyVehicle),
		"vehicleQuantity":      quantity,
		"intendedUse":          "none",
		"digitalSignatureUrl":  "signature-e2e",
		"agreedToTerms":        agreed,
	}
}

func (s *wizardSteps) submitWithQuantity(_ context.Context, quantity int) error {
	return s.tc.POST(s.base()+"/vehicle", s.vehicleForm(quantity, true))
}

func (s *wizardSteps) submitWithoutTerms(_ context.Context) error {
	return s.tc.POST(s.base()+"/vehicle", s.vehicleForm(1, false))
}
