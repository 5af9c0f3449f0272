package wizard

// ProfileBasics is the first step of the professional profile setup.
type ProfileBasics struct {
	DisplayName string `json:"displayName" validate:"required,min=2,max=80"`
	Headline    string `json:"headline" validate:"required,max=120"`
	Bio         string `json:"bio" validate:"max=1000"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// ProfileServices selects the trade and specialisations.
type ProfileServices struct {
	Category        string   `json:"category" validate:"required"`
	Subcategories   []string `json:"subcategories" validate:"min=1,max=10,dive,required"`
	YearsExperience int      `json:"yearsExperience" validate:"gte=0,lte=60"`
}

// ProfilePricing holds the rates shown on the profile card.
type ProfilePricing struct {
	HourlyRate float64 `json:"hourlyRate" validate:"gt=0"`
	CalloutFee float64 `json:"calloutFee" validate:"gte=0"`
	Currency   string  `json:"currency" validate:"required,len=3"`
}

// ProfileArea is the service area.
type ProfileArea struct {
	City      string   `json:"city" validate:"required"`
	RadiusKm  int      `json:"radiusKm" validate:"gte=1,lte=200"`
	Postcodes []string `json:"postcodes,omitempty" validate:"omitempty,max=20,dive,required,max=8"`
}

// ProfilePortfolio links previous work. The step is optional.
type ProfilePortfolio struct {
	Links []string `json:"links,omitempty" validate:"omitempty,max=10,dive,url"`
}

// Profile is the form data of the profile setup wizard.
type Profile struct {
	Basics    ProfileBasics    `json:"basics"`
	Services  ProfileServices  `json:"services"`
	Pricing   ProfilePricing   `json:"pricing"`
	Area      ProfileArea      `json:"area"`
	Portfolio ProfilePortfolio `json:"portfolio"`
}

// Profile setup step names.
const (
	StepBasics    = "basics"
	StepServices  = "services"
	StepPricing   = "pricing"
	StepArea      = "area"
	StepPortfolio = "portfolio"
)

// NewProfileWizard returns the profile setup wizard writing into p.
func NewProfileWizard(p *Profile) *Wizard {
	w, _ := New("profile",
		StructStep(StepBasics, false, &p.Basics),
		StructStep(StepServices, false, &p.Services),
		StructStep(StepPricing, false, &p.Pricing),
		StructStep(StepArea, false, &p.Area),
		StructStep(StepPortfolio, true, &p.Portfolio),
	)
	return w
}
