package http

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/price-engine/internal/engine"
	"github.com/hxuan190/price-engine/internal/http/httputil"
	"github.com/hxuan190/price-engine/internal/services/trading"
)

type TradeHandler struct {
	engineSvc *engine.Service
}

func NewTradeHandler(engineSvc *engine.Service) *TradeHandler {
	return &TradeHandler{engineSvc: engineSvc}
}

func (h *TradeHandler) Root() string {
	return "/trade"
}

func (h *TradeHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.buildTrade)
}

// InteractionResponse is one on-chain call of a trade, calldata hex-encoded.
type InteractionResponse struct {
	Target   string `json:"target"`
	Value    string `json:"value"`
	CallData string `json:"callData"`
}

// TradeResponse is a quote bundled with the calls that execute it.
type TradeResponse struct {
	QuoteResponse
	Approval     *string               `json:"approval,omitempty"`
	Interactions []InteractionResponse `json:"interactions"`
}

func (h *TradeHandler) buildTrade(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	trade, err := h.engineSvc.GetTrade(c.Request.Context(), query, strategy)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	httputil.HandleSuccess(c, toTradeResponse(req, query.Kind.String(), trade))
}

func toTradeResponse(req PriceRequest, kind string, trade *trading.Trade) TradeResponse {
	resp := TradeResponse{
		QuoteResponse: QuoteResponse{
			SellToken:   req.SellToken,
			BuyToken:    req.BuyToken,
			InAmount:    req.Amount,
			OutAmount:   trade.OutAmount.String(),
			Kind:        kind,
			GasEstimate: trade.GasEstimate,
			Solver:      trade.Solver.Hex(),
		},
		Interactions: make([]InteractionResponse, 0, len(trade.Interactions)),
	}
	if trade.Approval != nil {
		approval := trade.Approval.Hex()
		resp.Approval = &approval
	}
	for _, interaction := range trade.Interactions {
		resp.Interactions = append(resp.Interactions, InteractionResponse{
			Target:   interaction.Target.Hex(),
			Value:    interaction.Value.String(),
			CallData: hexutil.Encode(interaction.CallData),
		})
	}
	return resp
}
