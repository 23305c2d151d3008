package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/store"
)

// Handler defines the REST API handlers
type Handler interface {
	// GetToken retrieves a live token by its id
	// GET /v1/tokens/:id
	GetToken(c *gin.Context)

	// ListTokens retrieves the live tokens held by an owner
	// GET /v1/tokens?owner=<address>
	ListTokens(c *gin.Context)

	// GetRedemption retrieves the redemption of a token
	// GET /v1/redemptions/:token_id
	GetRedemption(c *gin.Context)

	// GetPendingMint retrieves a mint awaiting confirmation
	// GET /v1/pending-mints/:tx_hash
	GetPendingMint(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /healthz
	HealthCheck(c *gin.Context)
}

type handler struct {
	store store.Store
}

// NewHandler creates a new REST API handler reading from the index store
func NewHandler(st store.Store) Handler {
	return &handler{store: st}
}

func parseTokenID(c *gin.Context, param string) (uint64, bool) {
	tokenID, err := strconv.ParseUint(c.Param(param), 10, 63)
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("Invalid token id %q", c.Param(param)))
		return 0, false
	}
	return tokenID, true
}

func (h *handler) GetToken(c *gin.Context) {
	tokenID, ok := parseTokenID(c, "id")
	if !ok {
		return
	}

	token, err := h.store.GetToken(c.Request.Context(), tokenID)
	if err != nil {
		respondInternalError(c, err, "Failed to retrieve token", zap.Uint64("tokenID", tokenID))
		return
	}
	if token == nil {
		respondNotFound(c, "Token not found")
		return
	}

	c.JSON(http.StatusOK, mapTokenToResponse(token))
}

func (h *handler) ListTokens(c *gin.Context) {
	owner := c.Query("owner")
	if !common.IsHexAddress(owner) {
		respondBadRequest(c, "Query parameter owner must be an address")
		return
	}
	owner = domain.NormalizeAddress(owner)

	tokens, err := h.store.GetTokensByOwner(c.Request.Context(), owner)
	if err != nil {
		respondInternalError(c, err, "Failed to retrieve tokens", zap.String("owner", owner))
		return
	}

	resp := TokenListResponse{
		Owner:  owner,
		Tokens: make([]TokenResponse, 0, len(tokens)),
	}
	for i := range tokens {
		resp.Tokens = append(resp.Tokens, mapTokenToResponse(&tokens[i]))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetRedemption(c *gin.Context) {
	tokenID, ok := parseTokenID(c, "token_id")
	if !ok {
		return
	}

	record, err := h.store.GetRedeemedRecordByTokenID(c.Request.Context(), tokenID)
	if err != nil {
		respondInternalError(c, err, "Failed to retrieve redemption", zap.Uint64("tokenID", tokenID))
		return
	}
	if record == nil {
		respondNotFound(c, "Redemption not found")
		return
	}

	c.JSON(http.StatusOK, mapRedemptionToResponse(record))
}

func (h *handler) GetPendingMint(c *gin.Context) {
	txHash := c.Param("tx_hash")
	if raw, err := hexutil.Decode(txHash); err != nil || len(raw) != common.HashLength {
		respondBadRequest(c, "Invalid transaction hash")
		return
	}

	pendingMint, err := h.store.GetPendingMint(c.Request.Context(), txHash)
	if err != nil {
		respondInternalError(c, err, "Failed to retrieve pending mint", zap.String("txHash", txHash))
		return
	}
	if pendingMint == nil {
		respondNotFound(c, "Pending mint not found")
		return
	}

	c.JSON(http.StatusOK, mapPendingMintToResponse(pendingMint))
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "teleport-api",
	})
}
