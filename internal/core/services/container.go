package services

import (
	portsgw "github.com/digiwallet/wallet_backend/internal/core/ports/gateways"
	portsrepo "github.com/digiwallet/wallet_backend/internal/core/ports/repositories"
	portssvc "github.com/digiwallet/wallet_backend/internal/core/ports/services"
)

// ContainerConfig carries the engine construction parameters that come
// from application configuration.
type ContainerConfig struct {
	Transfer     TransferConfig
	ProviderName string
	Currency     string
}

// NewServiceContainer wires the service layer from repositories and
// gateways. adjuster and provider may be nil when the corresponding
// external collaborator is not deployed.
func NewServiceContainer(repos portsrepo.RepositoryProvider, adjuster portsgw.BalanceAdjuster, provider portsgw.PaymentProvider, cfg ContainerConfig) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Transfer: NewTransferService(repos.TxManager, repos.AccountRepo, repos.LedgerRepo, adjuster, cfg.Transfer),
		TopUp:    NewTopUpService(repos.TxManager, repos.AccountRepo, repos.LedgerRepo, provider, cfg.ProviderName, cfg.Currency),
		Account:  NewAccountService(repos.AccountRepo),
	}
}
