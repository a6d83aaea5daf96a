package usecase

import (
	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/infra"
)

type UseCase struct {
	clients *infra.Clients
}

var _ interfaces.UseCase = (*UseCase)(nil)

func New(clients *infra.Clients) *UseCase {
	return &UseCase{
		clients: clients,
	}
}
