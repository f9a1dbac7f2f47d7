package wizard

// Validator decides whether the draft may leave a step
type Validator func(Draft) bool

// validators maps every step to the predicate gating its forward transition
var validators = map[Step]Validator{
	StepPersonal:    validPersonal,
	StepEmployment:  validEmployment,
	StepSponsorship: validSponsorship,
}

// Validate runs the validator registered for step against the draft.
// Unknown steps never validate.
func Validate(step Step, d Draft) bool {
	v, ok := validators[step]
	if !ok {
		return false
	}
	return v(d)
}

func validPersonal(d Draft) bool {
	return filled(d.FullName, d.NationalID, d.BirthDate)
}

func validEmployment(d Draft) bool {
	return filled(d.ContractType, d.RoleID, d.DepartmentID)
}

func validSponsorship(d Draft) bool {
	return filled(d.SponsorID)
}

func filled(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}
