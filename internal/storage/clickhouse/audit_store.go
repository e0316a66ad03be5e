package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// AuditStore implements storage.AuditStore using ClickHouse. Decision
// audit rows are append-only analytical data: ClickHouse's MergeTree is
// the natural home for them.
type AuditStore struct {
	conn *Conn
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore(conn *Conn) *AuditStore {
	return &AuditStore{conn: conn}
}

// Compile-time interface check.
var _ storage.AuditStore = (*AuditStore)(nil)

// Insert appends one audit record.
func (s *AuditStore) Insert(ctx context.Context, rec *domain.AuditRecord) error {
	firedRules, err := json.Marshal(rec.FiredRules)
	if err != nil {
		return fmt.Errorf("encode fired rules: %w", err)
	}

	query := `
		INSERT INTO decision_audit (
			record_id, product_id, input_fingerprint, own_price, cost_basis,
			margin_floor, price_ceiling, competitor_count, avg_competitor_price,
			elasticity_used, elasticity_version, elasticity_confidence,
			rule_set_version, fired_rules, candidate_price, final_price,
			direction, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		rec.RecordID,
		rec.ProductID,
		rec.InputFingerprint,
		rec.OwnPrice,
		rec.CostBasis,
		rec.MarginFloor,
		rec.PriceCeiling,
		uint32(rec.CompetitorCount),
		rec.AvgCompetitorPrice,
		rec.ElasticityUsed,
		uint64(rec.ElasticityVersion),
		rec.ElasticityConfidence,
		uint64(rec.RuleSetVersion),
		string(firedRules),
		rec.CandidatePrice,
		rec.FinalPrice,
		rec.Direction,
		uint64(rec.ComputedAt),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", mapConnError(err))
	}
	return nil
}

// GetByProduct retrieves audit records for a product, ordered by computed_at ASC.
func (s *AuditStore) GetByProduct(ctx context.Context, productID string) ([]*domain.AuditRecord, error) {
	query := `
		SELECT record_id, product_id, input_fingerprint, own_price, cost_basis,
			margin_floor, price_ceiling, competitor_count, avg_competitor_price,
			elasticity_used, elasticity_version, elasticity_confidence,
			rule_set_version, fired_rules, candidate_price, final_price,
			direction, computed_at
		FROM decision_audit
		WHERE product_id = ?
		ORDER BY computed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", mapConnError(err))
	}
	defer rows.Close()

	var records []*domain.AuditRecord
	for rows.Next() {
		var (
			rec               domain.AuditRecord
			competitorCount   uint32
			elasticityVersion uint64
			ruleSetVersion    uint64
			firedRules        string
			computedAt        uint64
		)
		err := rows.Scan(
			&rec.RecordID,
			&rec.ProductID,
			&rec.InputFingerprint,
			&rec.OwnPrice,
			&rec.CostBasis,
			&rec.MarginFloor,
			&rec.PriceCeiling,
			&competitorCount,
			&rec.AvgCompetitorPrice,
			&rec.ElasticityUsed,
			&elasticityVersion,
			&rec.ElasticityConfidence,
			&ruleSetVersion,
			&firedRules,
			&rec.CandidatePrice,
			&rec.FinalPrice,
			&rec.Direction,
			&computedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		rec.CompetitorCount = int(competitorCount)
		rec.ElasticityVersion = int64(elasticityVersion)
		rec.RuleSetVersion = int64(ruleSetVersion)
		rec.ComputedAt = int64(computedAt)
		if firedRules != "" {
			if err := json.Unmarshal([]byte(firedRules), &rec.FiredRules); err != nil {
				return nil, fmt.Errorf("decode fired rules: %w", err)
			}
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}

	return records, nil
}
