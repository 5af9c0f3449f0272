package wizard

import "time"

// Pricing types of a proposal.
const (
	PricingFixed  = "fixed"
	PricingHourly = "hourly"
)

// ProposalCover is the cover letter.
type ProposalCover struct {
	Message string `json:"message" validate:"required,min=50,max=2000"`
}

// ProposalPricing is the quoted price.
type ProposalPricing struct {
	Type   string  `json:"type" validate:"required,oneof=fixed hourly"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

// ProposalTimeline is the proposed schedule.
type ProposalTimeline struct {
	StartDate    time.Time `json:"startDate" validate:"required"`
	DurationDays int       `json:"durationDays" validate:"gte=1,lte=365"`
}

// Proposal is the form data of the proposal wizard for one job.
type Proposal struct {
	JobID    string           `json:"jobId"`
	Cover    ProposalCover    `json:"cover"`
	Pricing  ProposalPricing  `json:"pricing"`
	Timeline ProposalTimeline `json:"timeline"`
}

// Proposal step names.
const (
	StepCover    = "cover"
	StepQuote    = "quote"
	StepTimeline = "timeline"
)

// NewProposalWizard returns the proposal wizard writing into p. The draft is
// scoped to the job.
func NewProposalWizard(p *Proposal) *Wizard {
	w, _ := New("proposal_"+p.JobID,
		StructStep(StepCover, false, &p.Cover),
		StructStep(StepQuote, false, &p.Pricing),
		StructStep(StepTimeline, false, &p.Timeline),
	)
	return w
}
