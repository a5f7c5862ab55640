// Package repository реализует хранилище данных на основе PostgreSQL:
// записи подписчиков с их переходами состояний и архив приливных прогнозов
// с заменой окна одним запросом внутри транзакции.
package repository

import (
	"context"
	"errors"
	"fmt"
	// Регистрация драйвера pgx для использования с database/sql.
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Типизированные ошибки хранилища, по которым обработчики выбирают HTTP-статус.
var (
	// ErrEmailAlreadySubscribed возвращается, когда адрес уже подтверждён и подписан:
	// повторная регистрация не должна ни пересоздавать запись, ни сбрасывать подписку.
	ErrEmailAlreadySubscribed = errors.New("email already verified and subscribed")
	// ErrVerificationTokenNotFound возвращается, когда нет ожидающей подтверждения записи
	// с таким токеном. Намеренно неотличимо от "токен уже использован".
	ErrVerificationTokenNotFound = errors.New("verification token not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с подписчиками и архивом приливов.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}
