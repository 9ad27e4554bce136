package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/asset-escrow/internal/interface/http/dto"
	"github.com/ignatzorin/asset-escrow/internal/interface/http/response"
	"github.com/ignatzorin/asset-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/asset-escrow/internal/service"
)

// SeedHandler создаёт демо-данные. Подключается только в development.
type SeedHandler struct {
	seedService *service.SeedService
}

func NewSeedHandler(seedService *service.SeedService) *SeedHandler {
	return &SeedHandler{seedService: seedService}
}

type seedListing struct {
	ID       string `json:"id"`
	SellerID string `json:"seller_id"`
	Title    string `json:"title"`
	Price    string `json:"price"`
}

type seedResponse struct {
	Seller   service.SeedAccount `json:"seller"`
	Buyer    service.SeedAccount `json:"buyer"`
	Listings []seedListing       `json:"listings"`
}

// Seed POST /api/dev/seed?num_listings=3
func (h *SeedHandler) Seed(c *gin.Context) {
	num, err := strconv.Atoi(c.DefaultQuery("num_listings", "3"))
	if err != nil {
		response.BadRequest(c, "num_listings должен быть числом")
		return
	}

	result, err := h.seedService.Seed(c.Request.Context(), num)
	if err != nil {
		_ = c.Error(apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать демо-данные"))
		return
	}

	listings := make([]seedListing, 0, len(result.Listings))
	for _, l := range result.Listings {
		listings = append(listings, seedListing{
			ID:       l.ID.String(),
			SellerID: l.SellerID.String(),
			Title:    l.Title,
			Price:    dto.Money(l.Price),
		})
	}

	response.Created(c, seedResponse{
		Seller:   result.Seller,
		Buyer:    result.Buyer,
		Listings: listings,
	})
}
