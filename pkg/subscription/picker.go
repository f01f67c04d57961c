package subscription

// PlanPicker is the pure selection model behind the reactivation screen.
// It keeps the trial opt-in consistent with the selected plan: the opt-in is
// only available while the selected catalog entry allows a trial, and it is
// cleared whenever the selection moves to a plan that does not.
type PlanPicker struct {
	mode           ReactivationMode
	plans          []PlanOption
	currentPriceID string
	selected       string
	trialOptIn     bool
}

// NewPlanPicker builds a picker from a reactivation preview. The default
// selection is the current plan when uncanceling and it is still in the
// catalog, otherwise the first offered plan.
func NewPlanPicker(preview *ReactivationPreview) *PlanPicker {
	p := &PlanPicker{mode: ModeNone}
	if preview == nil {
		return p
	}

	p.mode = preview.Mode
	p.plans = make([]PlanOption, len(preview.Plans))
	copy(p.plans, preview.Plans)
	for i := range p.plans {
		p.plans[i].normalize()
	}
	p.currentPriceID = preview.CurrentPriceID

	if len(p.plans) == 0 {
		return p
	}

	if p.mode == ModeUncancel && p.currentPriceID != "" && p.find(p.currentPriceID) != nil {
		p.selected = p.currentPriceID
	} else {
		p.selected = p.plans[0].PriceID
	}

	return p
}

// Mode returns the backend-supplied reactivation mode.
func (p *PlanPicker) Mode() ReactivationMode {
	return p.mode
}

// Plans returns the offered catalog entries.
func (p *PlanPicker) Plans() []PlanOption {
	out := make([]PlanOption, len(p.plans))
	copy(out, p.plans)
	return out
}

// Selected returns the currently selected catalog entry, false when nothing
// is selected.
func (p *PlanPicker) Selected() (PlanOption, bool) {
	if opt := p.find(p.selected); opt != nil {
		return *opt, true
	}
	return PlanOption{}, false
}

// SelectedPriceID returns the selected plan's price ID, empty when nothing
// is selected.
func (p *PlanPicker) SelectedPriceID() string {
	return p.selected
}

// Select moves the selection. Selecting a plan that disallows trials clears
// any trial opt-in.
func (p *PlanPicker) Select(priceID string) error {
	opt := p.find(priceID)
	if opt == nil {
		return ErrUnknownPriceID
	}
	p.selected = priceID
	if !opt.AllowTrial {
		p.trialOptIn = false
	}
	return nil
}

// TrialAvailable reports whether the trial opt-in may be shown at all: only
// in new-subscription mode and only when the selected plan allows it.
func (p *PlanPicker) TrialAvailable() bool {
	if p.mode != ModeNewSubscription {
		return false
	}
	opt := p.find(p.selected)
	return opt != nil && opt.AllowTrial
}

// SetTrialOptIn toggles the trial opt-in. Enabling it for a plan that does
// not offer a trial is refused.
func (p *PlanPicker) SetTrialOptIn(v bool) error {
	if !v {
		p.trialOptIn = false
		return nil
	}
	if !p.TrialAvailable() {
		return ErrTrialNotOffered
	}
	p.trialOptIn = true
	return nil
}

// TrialOptIn returns the current opt-in flag.
func (p *PlanPicker) TrialOptIn() bool {
	return p.trialOptIn
}

// WantsCheckout reports whether submitting requires the billing provider: a
// fresh subscription always does, and an uncancel does when the selection
// moved away from the current plan.
func (p *PlanPicker) WantsCheckout() bool {
	switch p.mode {
	case ModeNewSubscription:
		return true
	case ModeUncancel:
		return p.selected != "" && p.selected != p.currentPriceID
	default:
		return false
	}
}

// CanSubmit is the submit-gating predicate, decoupled from any rendering.
func (p *PlanPicker) CanSubmit() bool {
	switch p.mode {
	case ModeUncancel:
		return true
	case ModeNewSubscription:
		return p.selected != ""
	default:
		return false
	}
}

func (p *PlanPicker) find(priceID string) *PlanOption {
	if priceID == "" {
		return nil
	}
	for i := range p.plans {
		if p.plans[i].PriceID == priceID {
			return &p.plans[i]
		}
	}
	return nil
}
