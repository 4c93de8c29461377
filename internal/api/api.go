package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/IlyasAtabaev731/shop-backend/internal/config"
	"github.com/IlyasAtabaev731/shop-backend/internal/domain/models"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/password"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/ratelimit"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type Storage interface {
	SaveCustomer(ctx context.Context, c *models.Customer) (int64, error)
	GetCustomer(ctx context.Context, username string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, username string, patch models.CustomerPatch) error
	DeleteCustomer(ctx context.Context, username string) error
	ChargeWallet(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error)
	DeductWallet(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error)

	SaveItem(ctx context.Context, item *models.Item) (int64, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, id int64, patch models.ItemPatch) error
	DeductStock(ctx context.Context, id int64, quantity int) (int, error)
	ListAvailableGoods(ctx context.Context) ([]models.Good, error)

	SaveReview(ctx context.Context, username string, itemID int64, rating int, comment *string) (int64, error)
	UpdateReview(ctx context.Context, reviewID int64, username string, patch models.ReviewPatch) error
	DeleteReview(ctx context.Context, reviewID int64, username string) error
	ModerateReview(ctx context.Context, reviewID int64, approved bool) error
	ListProductReviews(ctx context.Context, itemID int64) ([]models.ProductReview, error)
	ListCustomerReviews(ctx context.Context, username string) ([]models.CustomerReview, error)
	GetReview(ctx context.Context, reviewID int64) (*models.ReviewDetail, error)

	Purchase(ctx context.Context, username string, itemID int64, quantity int) (*models.Receipt, error)
	ListPurchases(ctx context.Context, username string) ([]models.Purchase, error)
}

type APIServer struct {
	config    *config.Config
	logger    *slog.Logger
	server    *http.Server
	storage   Storage
	hasher    password.Hasher
	limiter   *ratelimit.Limiter
	jwtSecret []byte

	decoyOnce sync.Once
	decoyHash string
}

// New builds the server. limiter may be nil, which disables rate limiting.
func New(config *config.Config, logger *slog.Logger, storage Storage, hasher password.Hasher, limiter *ratelimit.Limiter, jwtSecret []byte) *APIServer {
	return &APIServer{
		config: config,
		logger: logger,
		server: &http.Server{
			Addr:         config.HTTPServer.Host + ":" + strconv.Itoa(config.HTTPServer.Port),
			ReadTimeout:  config.HTTPServer.Timeout,
			WriteTimeout: config.HTTPServer.Timeout,
			IdleTimeout:  config.HTTPServer.IdleTimeout,
		},
		storage:   storage,
		hasher:    hasher,
		limiter:   limiter,
		jwtSecret: jwtSecret,
	}
}

func (s *APIServer) Start() error {
	s.logger.Info("Starting server", slog.String("addr", s.server.Addr))

	s.server.Handler = s.Router()

	return s.server.ListenAndServe()
}

func (s *APIServer) MustStart() {
	err := s.Start()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic("Failed to start server: " + err.Error())
	}
}

func (s *APIServer) Stop(ctx context.Context) error {
	defer s.logger.Info("Server successfully stopped")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.requestLogger, s.rateLimit)

	router.HandleFunc("/auth/login", s.loginHandler()).Methods("POST")

	router.HandleFunc("/customers", s.registerCustomerHandler()).Methods("POST")
	router.HandleFunc("/customers", s.listCustomersHandler()).Methods("GET")
	router.HandleFunc("/customers/{username}", s.getCustomerHandler()).Methods("GET")
	router.HandleFunc("/customers/{username}", s.updateCustomerHandler()).Methods("PUT")
	router.HandleFunc("/customers/{username}", s.deleteCustomerHandler()).Methods("DELETE")
	router.HandleFunc("/customers/{username}/charge", s.chargeWalletHandler()).Methods("POST")
	router.HandleFunc("/customers/{username}/deduct", s.deductWalletHandler()).Methods("POST")

	router.HandleFunc("/inventory", s.addItemHandler()).Methods("POST")
	router.HandleFunc("/inventory/{id:[0-9]+}", s.updateItemHandler()).Methods("PUT")
	router.HandleFunc("/inventory/{id:[0-9]+}/deduct", s.deductStockHandler()).Methods("PATCH")

	router.HandleFunc("/reviews", s.authenticate(s.submitReviewHandler())).Methods("POST")
	router.HandleFunc("/reviews/{id:[0-9]+}", s.authenticate(s.updateReviewHandler())).Methods("PUT")
	router.HandleFunc("/reviews/{id:[0-9]+}", s.authenticate(s.deleteReviewHandler())).Methods("DELETE")
	router.HandleFunc("/reviews/{id:[0-9]+}/moderate", s.authenticate(s.requireModerator(s.moderateReviewHandler()))).Methods("PATCH")
	router.HandleFunc("/reviews/product/{id:[0-9]+}", s.productReviewsHandler()).Methods("GET")
	router.HandleFunc("/reviews/customer/{username}", s.customerReviewsHandler()).Methods("GET")
	router.HandleFunc("/reviews/{id:[0-9]+}", s.getReviewHandler()).Methods("GET")

	router.HandleFunc("/sales/goods", s.listGoodsHandler()).Methods("GET")
	router.HandleFunc("/sales/goods/{id:[0-9]+}", s.goodDetailsHandler()).Methods("GET")
	router.HandleFunc("/sales/purchase", s.purchaseHandler()).Methods("POST")
	router.HandleFunc("/sales/customers/{username}/purchases", s.customerPurchasesHandler()).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	})

	return router
}
