package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/tgmarket/internal/domain/repository"
	pkgAuth "github.com/polkiloo/tgmarket/internal/pkg/auth"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewTelegramLoginUseCase,
	func(v *pkgAuth.InitDataVerifier) InitDataVerifier { return v },
	NewCatalogUseCase,
	NewOrderFlow,
	NewProposalService,
	NewReviewUseCase,
	NewNotificationUseCase,
	newLedgerUseCase,
)

func newLedgerUseCase(repos repository.Factory) *Ledger {
	return NewLedger(repos.Ledger())
}
