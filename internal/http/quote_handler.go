package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/price-engine/internal/engine"
	"github.com/hxuan190/price-engine/internal/http/httputil"
)

type QuoteHandler struct {
	engineSvc *engine.Service
}

func NewQuoteHandler(engineSvc *engine.Service) *QuoteHandler {
	return &QuoteHandler{engineSvc: engineSvc}
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getQuote)
}

// QuoteResponse is a priced estimate without executable call data.
type QuoteResponse struct {
	SellToken   string `json:"sellToken"`
	BuyToken    string `json:"buyToken"`
	InAmount    string `json:"inAmount"`
	OutAmount   string `json:"outAmount"`
	Kind        string `json:"kind"`
	GasEstimate uint64 `json:"gasEstimate"`
	Solver      string `json:"solver"`
}

func (h *QuoteHandler) getQuote(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleBadRequest(c, err.Error())
		return
	}

	query, err := req.toQuery()
	if err != nil {
		httputil.HandleBadRequest(c, err.Error())
		return
	}

	strategy, err := engine.ParseStrategy(req.Strategy)
	if err != nil {
		httputil.HandleBadRequest(c, err.Error())
		return
	}

	quote, err := h.engineSvc.GetQuote(c.Request.Context(), query, strategy)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	httputil.HandleSuccess(c, QuoteResponse{
		SellToken:   query.SellToken.Hex(),
		BuyToken:    query.BuyToken.Hex(),
		InAmount:    query.InAmount.String(),
		OutAmount:   quote.OutAmount.String(),
		Kind:        query.Kind.String(),
		GasEstimate: quote.GasEstimate,
		Solver:      quote.Solver.Hex(),
	})
}
