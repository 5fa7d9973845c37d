package httpapi

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vsinha/pantry/pkg/application/dto"
	"github.com/vsinha/pantry/pkg/application/services"
	"github.com/vsinha/pantry/pkg/domain/entities"
)

// InventoryAPI exposes the inventory engine over HTTP. The engine is not
// safe for concurrent use, so every handler holds mu for the whole call.
type InventoryAPI struct {
	mu      sync.Mutex
	service *services.InventoryService
	logger  *slog.Logger
}

// NewInventoryAPI creates an InventoryAPI backed by the provided service.
func NewInventoryAPI(service *services.InventoryService, logger *slog.Logger) *InventoryAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryAPI{service: service, logger: logger}
}

// NewRouter registers the inventory routes on a new gin engine
func NewRouter(api *InventoryAPI) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(api.logger))

	router.GET("/date", api.GetDate)
	router.PUT("/date", api.SetDate)
	router.GET("/items", api.ListItems)
	router.POST("/items", api.AddItem)
	router.GET("/items/:name", api.GetItem)
	router.POST("/items/:name/use", api.UseItem)
	router.POST("/sweep", api.Sweep)

	router.NoRoute(func(c *gin.Context) {
		respondProblem(c, ProblemNotFound.WithDetail("no route for "+c.Request.Method+" "+c.Request.URL.Path))
	})
	return router
}

type setDateRequest struct {
	Date *entities.Date `json:"date"`
}

type addItemRequest struct {
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Kind           string          `json:"kind"`
	ExpirationDate *entities.Date  `json:"expiration_date"`
}

type useItemRequest struct {
	Quantity   decimal.Decimal `json:"quantity"`
	Perishable bool            `json:"perishable"`
}

// Get /date
// Current calendar date
func (api *InventoryAPI) GetDate(c *gin.Context) {
	api.mu.Lock()
	defer api.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"date": api.service.Date()})
}

// Put /date
// Move the calendar forward, sweeping expired batches
func (api *InventoryAPI) SetDate(c *gin.Context) {
	var payload setDateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, ProblemBadRequest.WithDetail(err.Error()))
		return
	}
	if payload.Date == nil {
		respondProblem(c, ProblemValidation.WithDetail("date is required"))
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	err := api.service.SetDate(c.Request.Context(), *payload.Date)
	api.respond(c, http.StatusOK, gin.H{"date": api.service.Date()}, err)
}

// Post /items
// Add a batch, merging it into an existing batch with the same key
func (api *InventoryAPI) AddItem(c *gin.Context) {
	var payload addItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, ProblemBadRequest.WithDetail(err.Error()))
		return
	}
	item, err := payload.toItem()
	if err != nil {
		respondError(c, err)
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	err = api.service.Add(c.Request.Context(), *item)
	api.respond(c, http.StatusCreated, gin.H{"item": dto.NewBatchView(*item)}, err)
}

// Get /items
// List batches by expiration, or totals per name with ?order=alphabetical
func (api *InventoryAPI) ListItems(c *gin.Context) {
	api.mu.Lock()
	defer api.mu.Unlock()

	switch order := c.DefaultQuery("order", "expiration"); order {
	case "expiration":
		c.JSON(http.StatusOK, gin.H{
			"date":  api.service.Date(),
			"items": dto.NewBatchViews(api.service.Batches()),
			"lines": api.service.ListByExpiration(),
		})
	case "alphabetical":
		c.JSON(http.StatusOK, gin.H{"totals": api.service.ListByAlphabetical()})
	default:
		respondProblem(c, ProblemBadRequest.WithDetail("order must be expiration or alphabetical, got "+order))
	}
}

// Get /items/:name
// Batches of one item; ?expires=yyyy-MM-dd or ?kind=non-perishable narrows to one batch
func (api *InventoryAPI) GetItem(c *gin.Context) {
	name := c.Param("name")
	expires, hasExpires := c.GetQuery("expires")
	kind, hasKind := c.GetQuery("kind")
	if hasExpires && hasKind {
		respondProblem(c, ProblemBadRequest.WithDetail("expires and kind are mutually exclusive"))
		return
	}

	var filter *entities.Date
	if hasExpires {
		date, err := entities.ParseDate(expires)
		if err != nil {
			respondError(c, err)
			return
		}
		filter = &date
	}
	if hasKind {
		parsed, err := entities.ParseItemKind(kind)
		if err != nil {
			respondError(c, err)
			return
		}
		if parsed != entities.NonPerishable {
			respondProblem(c, ProblemBadRequest.WithDetail("kind filter only accepts non-perishable; use expires for a perishable batch"))
			return
		}
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	var (
		lines []string
		err   error
	)
	if hasExpires || hasKind {
		lines, err = api.service.BatchInfo(name, filter)
	} else {
		lines, err = api.service.ItemInfo(name)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "lines": lines})
}

// Post /items/:name/use
// Consume stock; perishable requests draw earliest expiration first
func (api *InventoryAPI) UseItem(c *gin.Context) {
	name := c.Param("name")
	var payload useItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, ProblemBadRequest.WithDetail(err.Error()))
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	if payload.Perishable {
		result, err := api.service.UsePerishable(c.Request.Context(), name, payload.Quantity)
		api.respond(c, http.StatusOK, gin.H{"allocation": result}, err)
		return
	}

	err := api.service.UseNonPerishable(c.Request.Context(), name, payload.Quantity)
	api.respond(c, http.StatusOK, gin.H{"name": name, "quantity": payload.Quantity}, err)
}

// Post /sweep
// Remove every batch expiring on or before the current date
func (api *InventoryAPI) Sweep(c *gin.Context) {
	api.mu.Lock()
	defer api.mu.Unlock()

	removed, err := api.service.RemoveExpiredItems(c.Request.Context())
	api.respond(c, http.StatusOK, gin.H{"removed": dto.NewBatchViews(removed)}, err)
}

// respond writes body for a successful operation, attaching a storage
// warning when there is one, or the problem response for a failed one.
func (api *InventoryAPI) respond(c *gin.Context, status int, body gin.H, err error) {
	if err != nil && !entities.IsWarning(err) {
		respondError(c, err)
		return
	}
	if err != nil {
		body["warning"] = err.Error()
	}
	c.JSON(status, body)
}

func (r addItemRequest) toItem() (*entities.Item, error) {
	kind := entities.NonPerishable
	if r.Kind != "" {
		parsed, err := entities.ParseItemKind(r.Kind)
		if err != nil {
			return nil, err
		}
		kind = parsed
	} else if r.ExpirationDate != nil {
		kind = entities.Perishable
	}

	if kind == entities.NonPerishable {
		if r.ExpirationDate != nil {
			return nil, ProblemValidation.WithDetail("a non-perishable item cannot have an expiration_date")
		}
		return entities.NewNonPerishableItem(r.Name, r.Quantity)
	}
	if r.ExpirationDate == nil {
		return nil, ProblemValidation.WithDetail("a perishable item requires an expiration_date")
	}
	return entities.NewPerishableItem(r.Name, r.Quantity, *r.ExpirationDate)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)))
	}
}
