package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/id"
)

// SaveCalculation appends a calculation to the history. The record gets a
// generated ID and timestamp if it doesn't carry them yet.
func (s *Store) SaveCalculation(ctx context.Context, calc *domain.Calculation) error {
	if calc.ID == "" {
		newID, err := id.Generate("calc")
		if err != nil {
			return err
		}
		calc.ID = newID
	}
	if calc.CreatedAt.IsZero() {
		calc.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calculations (
			id, shop_domain, product_id, hs_code, destination,
			product_value, shipping_cost, quantity,
			duty_rate, duty_amount, vat_rate, vat_amount,
			margin_percent, total_landed_cost, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		calc.ID, calc.ShopDomain, nullString(calc.ProductID), nullString(calc.HSCode),
		calc.Destination, calc.ProductValue, calc.ShippingCost, calc.Quantity,
		calc.DutyRate, calc.DutyAmount, calc.VATRate, calc.VATAmount,
		calc.MarginPercent, calc.TotalLandedCost, formatTime(calc.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}

	return nil
}

// ListCalculations returns a shop's calculation history, newest first,
// capped at limit rows. A limit of 0 or less uses the default of 50.
func (s *Store) ListCalculations(ctx context.Context, shopDomain string, limit int) ([]*domain.Calculation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, shop_domain, product_id, hs_code, destination,
		       product_value, shipping_cost, quantity,
		       duty_rate, duty_amount, vat_rate, vat_amount,
		       margin_percent, total_landed_cost, created_at
		FROM calculations
		WHERE shop_domain = ?
		ORDER BY created_at DESC
		LIMIT ?`, shopDomain, limit)
	if err != nil {
		return nil, fmt.Errorf("query calculations: %w", err)
	}
	defer rows.Close()

	var calcs []*domain.Calculation
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, calc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calculations: %w", err)
	}

	return calcs, nil
}

// GetCalculationStats aggregates a shop's calculation history in SQL.
func (s *Store) GetCalculationStats(ctx context.Context, shopDomain string) (*domain.CalculationStats, error) {
	stats := &domain.CalculationStats{ShopDomain: shopDomain}

	var totalLanded, totalDuty, totalVAT, avgDutyRate sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       SUM(total_landed_cost),
		       SUM(duty_amount),
		       SUM(vat_amount),
		       AVG(duty_rate)
		FROM calculations
		WHERE shop_domain = ?`, shopDomain,
	).Scan(&stats.Count, &totalLanded, &totalDuty, &totalVAT, &avgDutyRate)
	if err != nil {
		return nil, fmt.Errorf("query calculation stats: %w", err)
	}

	stats.TotalLandedCost = totalLanded.Float64
	stats.TotalDuty = totalDuty.Float64
	stats.TotalVAT = totalVAT.Float64
	stats.AvgDutyRate = avgDutyRate.Float64

	return stats, nil
}

// scanCalculation scans one history row.
func scanCalculation(rows *sql.Rows) (*domain.Calculation, error) {
	var calc domain.Calculation
	var productID, hsCode sql.NullString
	var createdAt string

	err := rows.Scan(
		&calc.ID, &calc.ShopDomain, &productID, &hsCode, &calc.Destination,
		&calc.ProductValue, &calc.ShippingCost, &calc.Quantity,
		&calc.DutyRate, &calc.DutyAmount, &calc.VATRate, &calc.VATAmount,
		&calc.MarginPercent, &calc.TotalLandedCost, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan calculation: %w", err)
	}

	calc.ProductID = productID.String
	calc.HSCode = hsCode.String

	t, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	calc.CreatedAt = t

	return &calc, nil
}
