package league

import (
	"fmt"

	"github.com/google/uuid"
)

// CheckID garante que o id de partida/torneio é um UUID. Um id malformado não pode
// existir no banco, então é tratado como não encontrado.
func CheckID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}

// NewID gera um id novo para partidas e torneios
func NewID() string { return uuid.NewString() }
