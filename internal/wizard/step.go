package wizard

// Step identifies a page of the registration wizard
type Step int

const (
	StepPersonal Step = iota + 1
	StepEmployment
	StepSponsorship
)

const (
	FirstStep = StepPersonal
	LastStep  = StepSponsorship
)

// Steps lists the wizard pages in order
var Steps = []Step{StepPersonal, StepEmployment, StepSponsorship}

// Valid reports whether s is one of the wizard pages
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Title returns the heading shown for the step
func (s Step) Title() string {
	switch s {
	case StepPersonal:
		return "Dados Pessoais"
	case StepEmployment:
		return "Dados Funcionais"
	case StepSponsorship:
		return "Indicação Política"
	default:
		return ""
	}
}

// Description returns the subtitle shown for the step
func (s Step) Description() string {
	switch s {
	case StepPersonal:
		return "Informações pessoais do funcionário"
	case StepEmployment:
		return "Cargo, setor e dados funcionais"
	case StepSponsorship:
		return "Informações sobre indicação política"
	default:
		return ""
	}
}

func clampStep(s Step) Step {
	if s < FirstStep {
		return FirstStep
	}
	if s > LastStep {
		return LastStep
	}
	return s
}
