package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/flood-alert/internal/models"
)

// ReplaceWindow заменяет архив прогнозов внутри окна [windowStart, windowEnd]
// на свежие данные. Удаление и вставка выполняются в одной транзакции:
// повторный sync не плодит дубликатов, усечённый свежий прогноз не оставляет
// устаревших строк, а параллельный читатель не видит пустого окна между
// удалением и вставкой. Возвращает количество вставленных строк.
func (s *Storage) ReplaceWindow(ctx context.Context, windowStart, windowEnd time.Time, predictions []models.TidePrediction) (int, error) {
	const op = "storage.ReplaceWindow"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	deleteQuery := `DELETE FROM tides
			  WHERE prediction_time >= $1 AND prediction_time <= $2`
	if _, err := tx.ExecContext(ctx, deleteQuery, windowStart, windowEnd); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if len(predictions) > 0 {
		var sb strings.Builder
		sb.WriteString("INSERT INTO tides (prediction_time, height_ft, tide_type) VALUES ")
		args := make([]any, 0, len(predictions)*3)
		for i, p := range predictions {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
			args = append(args, p.Time, p.HeightFt, p.TideType)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return len(predictions), nil
}

// FindFloodPredictions возвращает прогнозы не раньше from и не ниже порога,
// по возрастанию времени.
func (s *Storage) FindFloodPredictions(ctx context.Context, from time.Time, thresholdFt float64) ([]*models.TidePrediction, error) {
	const op = "storage.FindFloodPredictions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT prediction_time, height_ft, tide_type
			  FROM tides
			  WHERE prediction_time >= $1 AND height_ft >= $2
			  ORDER BY prediction_time ASC`
	rows, err := s.DB.QueryContext(ctx, query, from, thresholdFt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close() //nolint:errcheck

	var result []*models.TidePrediction
	for rows.Next() {
		var p models.TidePrediction
		if err := rows.Scan(&p.Time, &p.HeightFt, &p.TideType); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
