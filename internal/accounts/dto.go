package accounts

import (
	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/pkg/enums"
)

const (
	// NewPersonName and NewPersonRank fill a self-registered account until an
	// admin approves it with real data.
	NewPersonName = "Novo Usuário"
	NewPersonRank = "Não definido"
)

// Outcome is the result of a register-or-authenticate call.
type Outcome struct {
	Person     *people.PersonDTO
	Registered bool
}

// ApproveInput carries the data an admin confirms when approving an account.
// A zero Role keeps the person's current role.
type ApproveInput struct {
	Name       string
	WarName    string
	Rank       string
	SectorName string
	Role       enums.Role
}

// ProfileInput carries the self-editable fields of a person.
type ProfileInput struct {
	Name    string
	WarName string
}
