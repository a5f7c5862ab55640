package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/flood-alert/internal/models"
)

// UpsertPendingSignup атомарно регистрирует адрес.
//
// Неизвестный адрес получает новую запись. Для существующего, но ещё не
// активного адреса (не подтверждён или отписан) токен подтверждения заменяется,
// а флаги сбрасываются: повторная отправка формы перезапускает подтверждение.
// Полностью активный адрес (подтверждён и подписан) не трогается, возвращается
// ErrEmailAlreadySubscribed. Проверка и запись выполняются одним запросом,
// поэтому параллельные регистрации одного адреса не теряют обновления.
// Возвращается сохранённое состояние: при обновлении существующей записи
// её id остаётся прежним.
func (s *Storage) UpsertPendingSignup(ctx context.Context, sub models.Subscriber) (*models.Subscriber, error) {
	const op = "storage.UpsertPendingSignup"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (id, email, is_verified, verification_token, is_subscribed)
			  VALUES ($1, $2, FALSE, $3, FALSE)
			  ON CONFLICT (email) DO UPDATE
			  SET verification_token = EXCLUDED.verification_token,
			      is_verified = FALSE,
			      is_subscribed = FALSE,
			      updated_at = CURRENT_TIMESTAMP
			  WHERE NOT (users.is_verified AND users.is_subscribed)
			  RETURNING id, email, is_verified, verification_token, is_subscribed`
	row := s.DB.QueryRowContext(ctx, query, sub.ID, sub.Email, sub.VerificationToken)

	var stored models.Subscriber
	if err := row.Scan(&stored.ID, &stored.Email, &stored.IsVerified,
		&stored.VerificationToken, &stored.IsSubscribed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Условие DO UPDATE не сработало: адрес уже подтверждён и подписан
			return nil, fmt.Errorf("%s: %w", op, ErrEmailAlreadySubscribed)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stored, nil
}

// VerifyByToken атомарно подтверждает адрес по одноразовому токену:
// включает is_verified и is_subscribed только если запись ещё не подтверждена.
// Предикат is_verified = FALSE внутри UPDATE делает токен одноразовым,
// повторное использование возвращает ErrVerificationTokenNotFound.
func (s *Storage) VerifyByToken(ctx context.Context, token string) (*models.Subscriber, error) {
	const op = "storage.VerifyByToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_verified = TRUE, is_subscribed = TRUE, updated_at = CURRENT_TIMESTAMP
			  WHERE verification_token = $1 AND is_verified = FALSE
			  RETURNING id, email, is_verified, verification_token, is_subscribed`
	row := s.DB.QueryRowContext(ctx, query, token)

	var stored models.Subscriber
	if err := row.Scan(&stored.ID, &stored.Email, &stored.IsVerified,
		&stored.VerificationToken, &stored.IsSubscribed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrVerificationTokenNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stored, nil
}

// Unsubscribe снимает подписку по id, запись остаётся в хранилище.
// Возвращает, изменилась ли запись: false для уже отписанных и несуществующих id,
// чтобы повторный клик по ссылке получал дружелюбный ответ, а не ошибку.
func (s *Storage) Unsubscribe(ctx context.Context, id string) (bool, error) {
	const op = "storage.Unsubscribe"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_subscribed = FALSE, updated_at = CURRENT_TIMESTAMP
			  WHERE id = $1 AND is_subscribed = TRUE`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// ListActiveRecipients возвращает всех получателей рассылки:
// подтверждённых и подписанных, в порядке создания (id упорядочен по времени).
func (s *Storage) ListActiveRecipients(ctx context.Context) ([]*models.Subscriber, error) {
	const op = "storage.ListActiveRecipients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, is_verified, verification_token, is_subscribed
			  FROM users
			  WHERE is_verified = TRUE AND is_subscribed = TRUE
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close() //nolint:errcheck

	var result []*models.Subscriber
	for rows.Next() {
		var sub models.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.IsVerified,
			&sub.VerificationToken, &sub.IsSubscribed); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
