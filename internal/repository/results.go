package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"caresense-playback/internal/models"

	"go.uber.org/zap"
)

// ResultsRepository 分类结果历史仓库
// 会话内的结果列表由回放引擎持有；这里是跨会话的历史存储，
// 供历史浏览、标签修正和导出使用
type ResultsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewResultsRepository 创建分类结果仓库
func NewResultsRepository(db *sql.DB, logger *zap.Logger) *ResultsRepository {
	return &ResultsRepository{
		db:     db,
		logger: logger,
	}
}

// ResultFilters 历史查询过滤条件
type ResultFilters struct {
	// 文本过滤
	Prediction *string // 预测标签（模糊匹配）

	// 时间段过滤
	StartTime *time.Time // predicted_at >= StartTime
	EndTime   *time.Time // predicted_at <= EndTime

	// 修正状态过滤
	CorrectedOnly bool // 只返回已人工修正的结果

	// 分页
	Limit int // 0 表示不限制
}

// InsertResult 写入一条分类结果
func (r *ResultsRepository) InsertResult(ctx context.Context, result *models.ClassificationResult) error {
	if result.ResultID == "" {
		return fmt.Errorf("result_id is required")
	}

	batchJSON, err := json.Marshal(result.SourceBatch)
	if err != nil {
		return fmt.Errorf("failed to marshal source batch: %w", err)
	}

	query := `
		INSERT INTO activity_results (
			result_id,
			predicted_at,
			display_time,
			prediction,
			confidence_score,
			source_batch
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		result.ResultID,
		result.PredictedAt,
		result.Timestamp,
		result.Prediction,
		result.ConfidenceScore,
		batchJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}

	r.logger.Debug("Result persisted",
		zap.String("result_id", result.ResultID),
		zap.String("prediction", result.Prediction),
	)

	return nil
}

// GetResult 根据 result_id 获取单条结果
func (r *ResultsRepository) GetResult(ctx context.Context, resultID string) (*models.ClassificationResult, error) {
	if resultID == "" {
		return nil, fmt.Errorf("result_id is required")
	}

	query := `
		SELECT
			result_id,
			predicted_at,
			display_time,
			prediction,
			confidence_score,
			source_batch,
			corrected_label,
			corrected_at
		FROM activity_results
		WHERE result_id = $1
	`

	result, err := scanResult(r.db.QueryRowContext(ctx, query, resultID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("result not found: %s", resultID)
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	return result, nil
}

// ListResults 按过滤条件列出历史结果（最近的在前）
func (r *ResultsRepository) ListResults(ctx context.Context, filters ResultFilters) ([]models.ClassificationResult, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	if filters.Prediction != nil {
		conditions = append(conditions, fmt.Sprintf("prediction ILIKE $%d", argIdx))
		args = append(args, "%"+*filters.Prediction+"%")
		argIdx++
	}
	if filters.StartTime != nil {
		conditions = append(conditions, fmt.Sprintf("predicted_at >= $%d", argIdx))
		args = append(args, *filters.StartTime)
		argIdx++
	}
	if filters.EndTime != nil {
		conditions = append(conditions, fmt.Sprintf("predicted_at <= $%d", argIdx))
		args = append(args, *filters.EndTime)
		argIdx++
	}
	if filters.CorrectedOnly {
		conditions = append(conditions, "corrected_label IS NOT NULL")
	}

	query := `
		SELECT
			result_id,
			predicted_at,
			display_time,
			prediction,
			confidence_score,
			source_batch,
			corrected_label,
			corrected_at
		FROM activity_results
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY predicted_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []models.ClassificationResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, *result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}

	return results, nil
}

// SaveCorrection 记录人工修正的活动标签（复核流程）
func (r *ResultsRepository) SaveCorrection(ctx context.Context, resultID, correctLabel string) error {
	if resultID == "" {
		return fmt.Errorf("result_id is required")
	}
	if correctLabel == "" {
		return fmt.Errorf("correct label is required")
	}

	query := `
		UPDATE activity_results
		SET corrected_label = $1,
		    corrected_at = $2
		WHERE result_id = $3
	`

	res, err := r.db.ExecContext(ctx, query, correctLabel, time.Now(), resultID)
	if err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("result not found: %s", resultID)
	}

	r.logger.Info("Correction saved",
		zap.String("result_id", resultID),
		zap.String("corrected_label", correctLabel),
	)

	return nil
}

// rowScanner 兼容 *sql.Row 和 *sql.Rows 的扫描接口
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanResult 扫描单行结果
func scanResult(row rowScanner) (*models.ClassificationResult, error) {
	var result models.ClassificationResult
	var batchJSON []byte
	var correctedLabel sql.NullString
	var correctedAt sql.NullTime

	err := row.Scan(
		&result.ResultID,
		&result.PredictedAt,
		&result.Timestamp,
		&result.Prediction,
		&result.ConfidenceScore,
		&batchJSON,
		&correctedLabel,
		&correctedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(batchJSON, &result.SourceBatch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal source batch: %w", err)
	}
	if correctedLabel.Valid {
		result.CorrectedLabel = correctedLabel.String
	}
	if correctedAt.Valid {
		result.CorrectedAt = &correctedAt.Time
	}

	return &result, nil
}
