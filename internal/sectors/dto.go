package sectors

import "github.com/erancho/erancho-backend/pkg/db/models"

// SectorDTO is the transport shape of a sector.
type SectorDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FromModel maps a sector row onto its DTO.
func FromModel(s *models.Sector) *SectorDTO {
	if s == nil {
		return nil
	}
	return &SectorDTO{ID: s.ID, Name: s.Name}
}
