package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/tarifflyapp/tariffly-server/internal/api"
	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/logger"
	"github.com/tarifflyapp/tariffly-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	docs := do.MustInvoke[*DocumentsHandle](i)

	services := &api.Services{
		Auth:           do.MustInvoke[*service.AuthService](i),
		Products:       do.MustInvoke[*service.ProductService](i),
		Classification: do.MustInvoke[*service.ClassificationService](i),
		LandedCost:     do.MustInvoke[*service.LandedCostService](i),
		ESG:            do.MustInvoke[*service.ESGService](i),
		Billing:        do.MustInvoke[*service.BillingService](i),
		Documents:      docs.Service,
	}

	handler := api.NewServer(cfg, storeHandle.Store, services, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
