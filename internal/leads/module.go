// Package leads provides the lead lifecycle bounded context module.
// This file wires the lifecycle service and mounts its routes.
package leads

import (
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/events"
	apphttp "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/http"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/handler"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/history"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/service"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/metrics"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/validator"
)

// Store is everything the module persists: leads and their history.
type Store interface {
	service.LeadStore
	history.Store
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
// It fails only when the request validation tags cannot be registered.
func NewModule(tx service.Transactor, store Store, commissions service.CommissionReader, calc service.CommissionMaterializer, eventBus events.Bus, val *validator.Validator, m *metrics.Metrics, log *logger.Logger) (*Module, error) {
	ledger := history.New(store)
	svc := service.New(tx, store, ledger, commissions, calc, eventBus, m, log)

	h, err := handler.New(svc, val)
	if err != nil {
		return nil, err
	}
	return &Module{
		handler: h,
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lifecycle service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}
