package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/asset-escrow/internal/domain/entity"
	"github.com/ignatzorin/asset-escrow/internal/domain/repository"
	"github.com/ignatzorin/asset-escrow/internal/domain/valueobject"
)

// MaxSeedListings - верхняя граница лотов за один вызов.
const MaxSeedListings = 50

var seedCatalog = []struct {
	title string
	price string
}{
	{"Instagram аккаунт, 12k подписчиков", "149.99"},
	{"Домен с историей, .com", "480.00"},
	{"Игровой аккаунт, 60 уровень", "35.50"},
	{"YouTube канал, монетизация включена", "1250.00"},
	{"Telegram канал, 5k участников", "89.90"},
	{"Лицензионный ключ IDE", "19.99"},
}

// SeedAccount - демо-пользователь с готовым access токеном.
type SeedAccount struct {
	Role        string    `json:"role"`
	UserID      uuid.UUID `json:"user_id"`
	AccessToken string    `json:"access_token"`
}

type SeedResult struct {
	Seller   SeedAccount       `json:"seller"`
	Buyer    SeedAccount       `json:"buyer"`
	Listings []*entity.Listing `json:"listings"`
}

// SeedService наполняет каталог демо-лотами для локальной разработки.
type SeedService struct {
	listings repository.ListingWriter
	tokens   *TokenManager
}

func NewSeedService(listings repository.ListingWriter, tokens *TokenManager) *SeedService {
	return &SeedService{listings: listings, tokens: tokens}
}

// Seed создаёт продавца с numListings лотами и покупателя.
func (s *SeedService) Seed(ctx context.Context, numListings int) (*SeedResult, error) {
	if numListings < 1 {
		numListings = 1
	}
	if numListings > MaxSeedListings {
		numListings = MaxSeedListings
	}

	seller, err := s.account("seller")
	if err != nil {
		return nil, err
	}
	buyer, err := s.account("buyer")
	if err != nil {
		return nil, err
	}

	result := &SeedResult{Seller: seller, Buyer: buyer, Listings: make([]*entity.Listing, 0, numListings)}
	for i := 0; i < numListings; i++ {
		item := seedCatalog[i%len(seedCatalog)]
		price, err := valueobject.ParseAmount(item.price)
		if err != nil {
			return nil, fmt.Errorf("seed service: bad catalog price %q: %w", item.price, err)
		}

		listing := &entity.Listing{
			ID:       uuid.New(),
			SellerID: seller.UserID,
			Title:    item.title,
			Price:    price,
			Status:   entity.ListingStatusActive,
		}
		if err := s.listings.SaveListing(ctx, listing); err != nil {
			return nil, fmt.Errorf("seed service: failed to save listing: %w", err)
		}
		result.Listings = append(result.Listings, listing)
	}

	return result, nil
}

func (s *SeedService) account(role string) (SeedAccount, error) {
	userID := uuid.New()
	token, _, err := s.tokens.GenerateAccess(userID)
	if err != nil {
		return SeedAccount{}, fmt.Errorf("seed service: failed to issue token: %w", err)
	}
	return SeedAccount{Role: role, UserID: userID, AccessToken: token}, nil
}
