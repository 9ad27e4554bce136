package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/asset-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/asset-escrow/internal/interface/http/dto"
	"github.com/ignatzorin/asset-escrow/internal/interface/http/response"
	"github.com/ignatzorin/asset-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/asset-escrow/internal/usecase/transaction"
)

type TransactionHandler struct {
	svc *transaction.Service
}

func NewTransactionHandler(svc *transaction.Service) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

// Create POST /api/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		response.BadRequest(c, "некорректный ID лота")
		return
	}

	created, err := h.svc.Create(c.Request.Context(), transaction.CreateInput{
		BuyerID:   userID,
		ListingID: listingID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, dto.ToTransactionResponse(created))
}

// List GET /api/transactions?role=buyer|seller
func (h *TransactionHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	role, err := valueobject.NewPartyRole(c.Query("role"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	items, err := h.svc.ListMine(c.Request.Context(), userID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, dto.ToTransactionListResponse(items))
}

// Get GET /api/transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, txID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	t, err := h.svc.Get(c.Request.Context(), txID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, dto.ToTransactionResponse(t))
}

// SendCredentials POST /api/transactions/:id/credentials
func (h *TransactionHandler) SendCredentials(c *gin.Context) {
	userID, txID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req dto.SendCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	t, err := h.svc.SendCredentials(c.Request.Context(), transaction.SendCredentialsInput{
		TransactionID: txID,
		ActorID:       userID,
		Credentials:   req.Credentials,
		Note:          req.Note,
		Attachments:   req.Attachments,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, dto.ToTransactionResponse(t))
}

// RevealCredentials GET /api/transactions/:id/credentials
func (h *TransactionHandler) RevealCredentials(c *gin.Context) {
	userID, txID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	plain, err := h.svc.RevealCredentials(c.Request.Context(), txID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, dto.CredentialsResponse{TransactionID: txID, Credentials: plain})
}

// Verify POST /api/transactions/:id/verify
func (h *TransactionHandler) Verify(c *gin.Context) {
	userID, txID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	t, err := h.svc.Verify(c.Request.Context(), transaction.VerifyInput{TransactionID: txID, ActorID: userID})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, dto.ToTransactionResponse(t))
}

// Dispute POST /api/transactions/:id/dispute
func (h *TransactionHandler) Dispute(c *gin.Context) {
	userID, txID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req dto.DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "причина спора обязательна")
		return
	}

	t, err := h.svc.Dispute(c.Request.Context(), transaction.DisputeInput{
		TransactionID: txID,
		ActorID:       userID,
		Reason:        req.Reason,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, dto.ToTransactionResponse(t))
}

// Cancel POST /api/transactions/:id/cancel
func (h *TransactionHandler) Cancel(c *gin.Context) {
	userID, txID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	t, err := h.svc.Cancel(c.Request.Context(), transaction.CancelInput{TransactionID: txID, ActorID: userID})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, dto.ToTransactionResponse(t))
}

// ListMessages GET /api/transactions/:id/messages
func (h *TransactionHandler) ListMessages(c *gin.Context) {
	userID, txID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	messages, err := h.svc.ListMessages(c.Request.Context(), txID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, dto.ToMessageListResponse(messages))
}

// QuoteFees GET /api/fees/quote?amount=
func (h *TransactionHandler) QuoteFees(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil {
		_ = c.Error(apperror.Wrap(err, apperror.ErrCodeInvalidAmount, "некорректный формат суммы"))
		return
	}

	fees, err := h.svc.QuoteFees(amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, dto.ToFeeQuoteResponse(fees))
}

func (h *TransactionHandler) actorAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return uuid.Nil, uuid.Nil, false
	}

	txID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "некорректный ID сделки")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, txID, true
}
