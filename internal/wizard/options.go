package wizard

import "github.com/cityhall/employee-registry/internal/models"

// Option is one entry of a select input
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// References are the read-only lookup lists loaded before the wizard opens
type References struct {
	Roles       []models.Reference `json:"roles"`
	Departments []models.Reference `json:"departments"`
	Sponsors    []models.Reference `json:"sponsors"`
}

var (
	sexOptions = []Option{
		{Value: "M", Label: "Masculino"},
		{Value: "F", Label: "Feminino"},
	}
	maritalStatusOptions = []Option{
		{Value: "solteiro", Label: "Solteiro(a)"},
		{Value: "casado", Label: "Casado(a)"},
		{Value: "divorciado", Label: "Divorciado(a)"},
		{Value: "viuvo", Label: "Viúvo(a)"},
	}
	educationOptions = []Option{
		{Value: "fundamental", Label: "Ensino Fundamental"},
		{Value: "medio", Label: "Ensino Médio"},
		{Value: "superior", Label: "Ensino Superior"},
		{Value: "pos", Label: "Pós-graduação"},
	}
	contractTypeOptions = []Option{
		{Value: string(models.ContractTypeEffective), Label: "Efetivo"},
		{Value: string(models.ContractTypeCommissioned), Label: "Comissionado"},
		{Value: string(models.ContractTypeTemporary), Label: "Temporário"},
	}
)

// optionsFor returns the select inputs rendered on step
func (r References) optionsFor(step Step) map[Field][]Option {
	switch step {
	case StepPersonal:
		return map[Field][]Option{
			FieldSex:            sexOptions,
			FieldMaritalStatus:  maritalStatusOptions,
			FieldEducationLevel: educationOptions,
		}
	case StepEmployment:
		return map[Field][]Option{
			FieldContractType: contractTypeOptions,
			FieldRoleID:       referenceOptions(r.Roles),
			FieldDepartmentID: referenceOptions(r.Departments),
		}
	case StepSponsorship:
		return map[Field][]Option{
			FieldSponsorID: referenceOptions(r.Sponsors),
		}
	default:
		return nil
	}
}

func referenceOptions(refs []models.Reference) []Option {
	out := make([]Option, 0, len(refs))
	for _, ref := range refs {
		out = append(out, Option{Value: ref.ID, Label: ref.Name})
	}
	return out
}
