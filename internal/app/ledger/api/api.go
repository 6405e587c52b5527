//GET  /api/v1/health                    # Проверка состояния
//GET  /api/v1/network                   # chain id, адрес контракта, input verifier
//POST /api/v1/relayer/inputs            # Зашифровать вход (relayer)
//POST /api/v1/records                   # createRecord (подпись)
//GET  /api/v1/records/{id}              # getEncryptedRecord
//POST /api/v1/records/{id}/grants       # authorizeVerifier (подпись)
//POST /api/v1/records/{id}/decryptions  # requestDecryption (подпись)
//GET  /api/v1/events                    # Журнал событий

package api

import (
	"time"

	contractAPI "maskedvaccine/internal/app/ledger/api/http/contract"
	healthAPI "maskedvaccine/internal/app/ledger/api/http/health"
	"maskedvaccine/internal/app/ledger/api/http/middleware"
	"maskedvaccine/internal/app/ledger/api/http/middleware/logger"
	"maskedvaccine/internal/app/ledger/api/http/middleware/signature"
	networkAPI "maskedvaccine/internal/app/ledger/api/http/network"
	relayerAPI "maskedvaccine/internal/app/ledger/api/http/relayer"
	"maskedvaccine/internal/domain/fhe"
	"maskedvaccine/internal/domain/ledger"
	"maskedvaccine/internal/utils/reqsign"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

// Deps - зависимости API узла
type Deps struct {
	Contract        ledger.Contracter
	Relayer         fhe.Relayer
	Network         fhe.Metadata
	SignatureWindow time.Duration
	Now             func() time.Time
}

type Handlers struct {
	Health   *healthAPI.Handler
	Network  *networkAPI.Handler
	Relayer  *relayerAPI.Handler
	Contract *contractAPI.Handler
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register
func New(d Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(signature.New(d.SignatureWindow, d.Now, log).Handler)

	config := huma.DefaultConfig("MaskedVaccine Ledger API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"signature": {Type: "apiKey", In: "header", Name: reqsign.HeaderSignature},
	}

	API := humachi.New(mux, config)

	h := handlers(d, log)
	h.Health.SetupRoutes(API)
	h.Network.SetupRoutes(API)
	h.Relayer.SetupRoutes(API)
	h.Contract.SetupRoutes(API)

	return mux
}

func handlers(d Deps, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(d.Contract, d.Network.ChainID, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	networkHandler := networkAPI.NewHandler(d.Network, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	relayerHandler := relayerAPI.NewHandler(d.Relayer, log.With("component", "relayer_api"), middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	contractHandler := contractAPI.NewHandler(d.Contract, log.With("component", "contract_api"), middlewares.GetAllAndClear())

	return &Handlers{
		Health:   healthHandler,
		Network:  networkHandler,
		Relayer:  relayerHandler,
		Contract: contractHandler,
	}
}
