// Package commissions provides the commission settlement bounded context.
package commissions

import (
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/handler"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/service"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/events"
	apphttp "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/http"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/metrics"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/validator"
)

// Module is the commissions module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(tx service.Transactor, store service.Store, leads service.LeadReader, eventBus events.Bus, val *validator.Validator, m *metrics.Metrics, log *logger.Logger) *Module {
	svc := service.New(tx, store, leads, eventBus, m, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

func (m *Module) Name() string {
	return "commissions"
}

func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts commission reads for every caller and settlement
// for admins only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected, ctx.Admin)
}
