// Package models содержит доменные структуры сервиса оповещений о наводнениях:
// подписчика рассылки, прогноз прилива и производное событие наводнения.
package models

import (
	"github.com/google/uuid"
)

// Subscriber представляет получателя рассылки. Запись создаётся при регистрации
// и проходит жизненный цикл: не подтверждён -> подтверждён и подписан -> отписан.
type Subscriber struct {
	ID                string // Уникальный идентификатор, UUIDv7 (упорядочен по времени создания)
	Email             string // Электронная почта, уникальна в хранилище
	IsVerified        bool   // Подтвердил ли адрес по ссылке из письма
	VerificationToken string // Одноразовый токен подтверждения, UUIDv4
	IsSubscribed      bool   // Активна ли подписка на уведомления
}

// NewSubscriber создает нового неподтверждённого подписчика со свежим
// токеном подтверждения.
func NewSubscriber(email string) Subscriber {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 падает только при отказе источника случайности,
		// в этом случае регистрация невозможна в принципе.
		panic(err)
	}
	return Subscriber{
		ID:                id.String(),
		Email:             email,
		IsVerified:        false,
		VerificationToken: uuid.NewString(),
		IsSubscribed:      false,
	}
}

// SignupRequest используется для приёма данных из JSON-запроса регистрации.
type SignupRequest struct {
	Email string `json:"email" validate:"required,email"` // Адрес для подписки
}
