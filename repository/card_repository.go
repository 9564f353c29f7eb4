package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"tshirt-bundle/db"
	"tshirt-bundle/logger"
	"tshirt-bundle/models"
)

var ErrNoDatabase = errors.New("database not initialized")

// CardRepository loads bundle cards from Postgres
type CardRepository struct {
	logger logger.ILogger
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(log logger.ILogger) *CardRepository {
	return &CardRepository{logger: log}
}

// Ensure CardRepository implements CardRepositoryInterface
var _ CardRepositoryInterface = (*CardRepository)(nil)

// ListCards retrieves the active cards of a bundle in display order
func (r *CardRepository) ListCards(ctx context.Context, bundleID string) ([]models.Card, error) {
	if db.DB == nil {
		return nil, ErrNoDatabase
	}

	query := `
		SELECT
			product_id,
			default_variant_id,
			title,
			COALESCE(image_url, '') as image_url,
			COALESCE(thumb_url, '') as thumb_url,
			price_cents,
			COALESCE(compare_price_cents, 0) as compare_price_cents,
			variant_count,
			COALESCE(variants_json::text, '') as variants_json,
			COALESCE(options_json::text, '') as options_json
		FROM bundle_cards
		WHERE bundle_id = $1
		  AND is_active = true
		ORDER BY position ASC, product_id ASC
	`

	rows, err := db.DB.QueryContext(ctx, query, bundleID)
	if err != nil {
		r.logger.Error("repository", "error querying bundle cards", map[string]interface{}{"bundle": bundleID, "error": err})
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var card models.Card
		var productID, variantID int64
		var variantsJSON, optionsJSON sql.NullString

		if err := rows.Scan(
			&productID,
			&variantID,
			&card.Title,
			&card.Image,
			&card.Thumb,
			&card.PriceCents,
			&card.ComparePriceCents,
			&card.VariantCount,
			&variantsJSON,
			&optionsJSON,
		); err != nil {
			r.logger.Warn("repository", "skipping unreadable card row", map[string]interface{}{"bundle": bundleID, "error": err.Error()})
			continue
		}

		card.ProductID = strconv.FormatInt(productID, 10)
		card.DefaultVariantID = strconv.FormatInt(variantID, 10)
		if card.HasVariants() {
			card.VariantsJSON = variantsJSON.String
			card.OptionsJSON = optionsJSON.String
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("repository", "error iterating bundle cards", map[string]interface{}{"bundle": bundleID, "error": err})
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	r.logger.Debug("repository", "fetched bundle cards", map[string]interface{}{"bundle": bundleID, "count": len(cards)})
	return cards, nil
}
