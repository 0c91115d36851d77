package people

import (
	"sort"

	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/erancho/erancho-backend/pkg/enums"
)

// PersonDTO is the transport shape of a person. The pin never leaves the service.
type PersonDTO struct {
	CPF      string              `json:"cpf"`
	Name     string              `json:"name"`
	WarName  string              `json:"war_name"`
	Rank     string              `json:"rank"`
	SectorID int64               `json:"sector_id"`
	Role     enums.Role          `json:"role"`
	Status   enums.AccountStatus `json:"status"`
}

// FromModel maps a person row onto its DTO.
func FromModel(p *models.Person) *PersonDTO {
	if p == nil {
		return nil
	}
	return &PersonDTO{
		CPF:      p.CPF,
		Name:     p.Name,
		WarName:  p.WarName,
		Rank:     p.Rank,
		SectorID: p.SectorID,
		Role:     p.Role,
		Status:   p.Status,
	}
}

// FromModels maps rows in order.
func FromModels(rows []models.Person) []PersonDTO {
	out := make([]PersonDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// SortByName orders people by name byte-wise, breaking ties on CPF.
func SortByName(rows []models.Person) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].CPF < rows[j].CPF
	})
}
